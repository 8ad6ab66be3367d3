package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"newswatch/internal/config"
	"newswatch/internal/pipeline"
	"newswatch/internal/scheduler"
	"newswatch/internal/source"
	"newswatch/internal/storage"
)

// Runs one ingestion pass and exits; with -daemon it keeps running on the
// configured cron spec instead.
func main() {
	daemon := flag.Bool("daemon", false, "keep running and trigger passes on CRON_SPEC")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	fetchers := source.FromConfig(cfg)
	if len(fetchers) == 0 {
		log.Fatalf("no sources configured: set FEED_URLS and/or NEWS_PAGE_URL")
	}

	p := pipeline.New(fetchers, store)
	s, err := scheduler.New(cfg.CronSpec, p)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}

	if !*daemon {
		s.RunOnce()
		return
	}

	s.Start()
	log.Printf("collect daemon running, cron=%s", cfg.CronSpec)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Stop()
}
