package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORTAL_BASE_URL", "https://portal.example/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DatabaseDriver != "sqlite" {
		t.Errorf("Expected sqlite driver, got %s", cfg.DatabaseDriver)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("Expected 15s request timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.WatchInterval != 10*time.Minute {
		t.Errorf("Expected 10m watch interval, got %s", cfg.WatchInterval)
	}
	if got := cfg.SearchFormURL(); got != "https://portal.example/hcservices/cases_qry/index_qry.php" {
		t.Errorf("Unexpected search form URL %s", got)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad cache size", "CACHE_SIZE", "lots"},
		{"bad timeout", "REQUEST_TIMEOUT", "soon"},
		{"bad watch interval", "WATCH_INTERVAL", "often"},
		{"bad driver", "DATABASE_DRIVER", "oracle"},
		{"postgres without dsn", "DATABASE_DRIVER", "postgres"},
		{"bad extractor", "PDF_EXTRACTOR", "ocr"},
		{"unipdf without key", "PDF_EXTRACTOR", "unipdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}
