package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/JustJay7/ecourts-fetcher/internal/api"
	"github.com/JustJay7/ecourts-fetcher/internal/archive"
	"github.com/JustJay7/ecourts-fetcher/internal/cache"
	"github.com/JustJay7/ecourts-fetcher/internal/causelist"
	"github.com/JustJay7/ecourts-fetcher/internal/config"
	"github.com/JustJay7/ecourts-fetcher/internal/database"
	"github.com/JustJay7/ecourts-fetcher/internal/judgment"
	"github.com/JustJay7/ecourts-fetcher/internal/pdftext"
	"github.com/JustJay7/ecourts-fetcher/internal/scraper"
	"github.com/JustJay7/ecourts-fetcher/internal/server"
	"github.com/JustJay7/ecourts-fetcher/internal/session"
	"github.com/JustJay7/ecourts-fetcher/internal/watch"
	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

func main() {
	var migrate bool
	var cleanupDays int
	flag.BoolVar(&migrate, "migrate", false, "Run database migrations and exit")
	flag.IntVar(&cleanupDays, "cleanup-judgments", 0, "Remove downloaded judgments older than N days and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}

	if migrate {
		log.Info("Database migrations completed successfully")
		return
	}

	store := database.NewStore(db)
	newSession := func() *session.Session { return scraper.NewSession(cfg) }
	judgments := judgment.NewDownloader(store, newSession, log, cfg.DownloadDir)

	if cleanupDays > 0 {
		removed, err := judgments.CleanupOlderThan(cleanupDays)
		if err != nil {
			log.Fatal("Judgment cleanup failed", "error", err)
		}
		log.Info("Judgment cleanup completed", "removed", removed)
		return
	}

	ctx := context.Background()
	var closers []io.Closer

	arch, err := archive.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize archive", "error", err)
	}

	var forms scraper.FormSource
	if cfg.BrowserFormDiscovery {
		browser, err := scraper.NewBrowserFormSource(cfg, log)
		if err != nil {
			log.Fatal("Failed to launch browser", "error", err)
		}
		forms = browser
		closers = append(closers, browser)
	}

	extractor, err := pdftext.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize PDF extractor", "error", err)
	}
	if extractor == nil {
		log.Warn("PDF extraction disabled, PDF cause lists will be rejected")
	}

	listCache, err := cache.NewCauseListCache(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize cause list cache", "error", err)
	}
	if c, ok := listCache.(io.Closer); ok {
		closers = append(closers, c)
	}

	lists := causelist.NewService(cfg, extractor, listCache, log)
	evaluator := watch.NewEvaluator(store, lists, log)
	scheduler := watch.NewScheduler(cfg.WatchInterval, evaluator.Pass, log)

	deps := api.Deps{
		Config:     cfg,
		Logger:     log,
		Store:      store,
		Cache:      cache.NewCache(cfg.CacheSize, cfg.CacheTTL),
		Sessions:   cache.NewSessionStore(cfg.SessionTTL),
		Searcher:   scraper.NewSearcher(cfg, forms, scraper.NewDumper(cfg.DebugDumpDir, arch, log), log),
		Captchas:   scraper.NewCaptchaFetcher(cfg.CaptchaPageURL(), cfg.CaptchaImageURL(), cfg.CaptchaDir),
		CauseLists: lists,
		Evaluator:  evaluator,
		Judgments:  judgments,
		Archive:    arch,
	}

	srv := server.New(cfg, deps, scheduler, closers...)

	log.Info("Starting eCourts fetcher",
		"host", cfg.Host,
		"port", cfg.Port,
		"portal", cfg.PortalBaseURL,
		"database", cfg.DatabaseDriver,
	)

	if err := srv.Run(); err != nil {
		log.Fatal("Server stopped with error", "error", err)
	}
}
