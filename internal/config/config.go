package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Host string
	Port string

	// Database settings
	DatabaseDriver string
	DatabasePath   string
	DatabaseDSN    string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Cache settings
	CacheSize  int
	CacheTTL   time.Duration
	SessionTTL time.Duration

	// Portal settings
	PortalBaseURL      string
	SearchFormPath     string
	SearchEndpointPath string
	CaptchaPagePath    string
	CaptchaImagePath   string
	UserAgent          string

	// Scraper settings
	RequestTimeout       time.Duration
	CaptchaDir           string
	DebugDumpDir         string
	BrowserFormDiscovery bool
	HeadlessMode         bool
	BrowserPath          string
	DownloadDir          string

	// Cause-list settings
	HighCourtCauseListURL string
	DistrictCauseListURL  string
	PDFExtractor          string
	UnidocLicenseKey      string
	CauseListCacheTTL     time.Duration

	// Redis settings
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Archive settings
	S3Bucket string
	S3Region string
	S3Prefix string

	// Watch settings
	WatchInterval time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not an error if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Host:                  getEnv("HOST", "0.0.0.0"),
		Port:                  getEnv("PORT", "8080"),
		DatabaseDriver:        strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		DatabasePath:          getEnv("DATABASE_PATH", "./data/ecourts.db"),
		DatabaseDSN:           getEnv("DATABASE_DSN", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
		PortalBaseURL:         strings.TrimRight(getEnv("PORTAL_BASE_URL", "https://hcservices.ecourts.gov.in"), "/"),
		SearchFormPath:        getEnv("SEARCH_FORM_PATH", "/hcservices/cases_qry/index_qry.php"),
		SearchEndpointPath:    getEnv("SEARCH_ENDPOINT_PATH", "/hcservices/cases_qry/index_qry.php?action_code=showRecords"),
		CaptchaPagePath:       getEnv("CAPTCHA_PAGE_PATH", "/hcservices/cases/case_no.php"),
		CaptchaImagePath:      getEnv("CAPTCHA_IMAGE_PATH", "/hcservices/securimage/securimage_show.php"),
		UserAgent:             getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"),
		CaptchaDir:            getEnv("CAPTCHA_DIR", "./data/captchas"),
		DebugDumpDir:          getEnv("DEBUG_DUMP_DIR", "./data/debug"),
		BrowserPath:           getEnv("ROD_BROWSER_PATH", ""),
		DownloadDir:           getEnv("DOWNLOAD_DIR", "./data/downloads"),
		HighCourtCauseListURL: getEnv("HIGH_COURT_CAUSELIST_URL", "https://hcservices.ecourts.gov.in/hcservices/main.php"),
		DistrictCauseListURL:  getEnv("DISTRICT_CAUSELIST_URL", "https://services.ecourts.gov.in/ecourtindia_v6/"),
		PDFExtractor:          strings.ToLower(getEnv("PDF_EXTRACTOR", "rsc")),
		UnidocLicenseKey:      getEnv("UNIDOC_LICENSE_KEY", ""),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		S3Bucket:              getEnv("S3_BUCKET", ""),
		S3Region:              getEnv("S3_REGION", "ap-south-1"),
		S3Prefix:              getEnv("S3_PREFIX", "ecourts"),
	}

	// Parse integer values
	var err error
	cfg.CacheSize, err = strconv.Atoi(getEnv("CACHE_SIZE", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_SIZE: %w", err)
	}

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	if cfg.CacheTTL, err = minutes("CACHE_TTL", "30"); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = minutes("SESSION_TTL", "10"); err != nil {
		return nil, err
	}
	if cfg.CauseListCacheTTL, err = minutes("CAUSELIST_CACHE_TTL", "15"); err != nil {
		return nil, err
	}
	if cfg.WatchInterval, err = minutes("WATCH_INTERVAL", "10"); err != nil {
		return nil, err
	}

	requestTimeout, err := strconv.Atoi(getEnv("REQUEST_TIMEOUT", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	cfg.RequestTimeout = time.Duration(requestTimeout) * time.Second

	cfg.HeadlessMode = getEnv("HEADLESS_MODE", "true") == "true"
	cfg.BrowserFormDiscovery = getEnv("BROWSER_FORM_DISCOVERY", "false") == "true"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects combinations the rest of the application cannot start with
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.PDFExtractor {
	case "rsc", "unipdf", "none":
	default:
		return fmt.Errorf("unsupported PDF_EXTRACTOR %q", c.PDFExtractor)
	}

	if c.PDFExtractor == "unipdf" && c.UnidocLicenseKey == "" {
		return fmt.Errorf("UNIDOC_LICENSE_KEY is required for the unipdf extractor")
	}

	return nil
}

// SearchFormURL is the absolute URL of the portal's search form
func (c *Config) SearchFormURL() string {
	return c.PortalBaseURL + c.SearchFormPath
}

// SearchEndpointURL is the default target for search submissions
func (c *Config) SearchEndpointURL() string {
	return c.PortalBaseURL + c.SearchEndpointPath
}

// CaptchaPageURL is visited before the image so the portal binds a session cookie
func (c *Config) CaptchaPageURL() string {
	return c.PortalBaseURL + c.CaptchaPagePath
}

func (c *Config) CaptchaImageURL() string {
	return c.PortalBaseURL + c.CaptchaImagePath
}

// minutes parses an integer environment variable as a number of minutes
func minutes(key, defaultValue string) (time.Duration, error) {
	n, err := strconv.Atoi(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return time.Duration(n) * time.Minute, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
