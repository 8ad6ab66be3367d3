package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"newswatch/internal/api"
	"newswatch/internal/config"
	"newswatch/internal/pipeline"
	"newswatch/internal/source"
	"newswatch/internal/storage"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if cfg.SchedulerToken == "" {
		log.Printf("warn: SCHEDULER_TOKEN not set, scrape trigger will reject all callers")
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

	r := gin.Default()
	srv := api.NewServer(store, p, cfg.SchedulerToken)
	srv.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
