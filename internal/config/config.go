package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
)

// Selector validation errors. Zero matches at runtime is a valid outcome;
// a missing selector key is a startup misconfiguration.
var (
	ErrMissingItemSelector   = errors.New("scraper item selector is required")
	ErrMissingTitleSelector  = errors.New("scraper title selector is required")
	ErrMissingLinkSelector   = errors.New("scraper link selector is required")
	ErrMissingSourceSelector = errors.New("scraper source selector is required")
)

// Selectors describes the repeating article structure on the listing page.
// These mirror the live page DOM and are expected to rot; they live in the
// environment so updating them does not need a rebuild.
type Selectors struct {
	Item    string // container for one article block
	Title   string // child selector, text
	Link    string // child selector, href attribute
	Source  string // child selector, text
	Snippet string // child selector, text; optional
}

func (s Selectors) Validate() error {
	if strings.TrimSpace(s.Item) == "" {
		return ErrMissingItemSelector
	}
	if strings.TrimSpace(s.Title) == "" {
		return ErrMissingTitleSelector
	}
	if strings.TrimSpace(s.Link) == "" {
		return ErrMissingLinkSelector
	}
	if strings.TrimSpace(s.Source) == "" {
		return ErrMissingSourceSelector
	}
	return nil
}

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	// Shared secret expected in the X-Scheduler-Token header of the
	// ingestion trigger. Empty means the trigger endpoint rejects everything.
	SchedulerToken string

	// Comma-separated RSS feed URLs.
	FeedURLs string

	// HTML listing page to scrape; empty disables the page source.
	NewsPageURL string
	UserAgent   string
	Selectors   Selectors

	CronSpec string
}

func Load() *Config {
	cfg := &Config{
		AppPort:        getEnv("APP_PORT", "9000"),
		PostgresDSN:    getEnv("POSTGRES_DSN", "host=localhost user=newswatch password=newswatch dbname=newswatch port=5432 sslmode=disable TimeZone=UTC"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		SchedulerToken: getEnv("SCHEDULER_TOKEN", ""),
		FeedURLs:       getEnv("FEED_URLS", ""),
		NewsPageURL:    getEnv("NEWS_PAGE_URL", "https://news.google.com/"),
		UserAgent:      getEnv("SCRAPER_USER_AGENT", "Mozilla/5.0 (compatible; newswatch/1.0)"),
		Selectors: Selectors{
			Item:    getEnv("SCRAPER_ITEM_SELECTOR", "article"),
			Title:   getEnv("SCRAPER_TITLE_SELECTOR", "h3 a"),
			Link:    getEnv("SCRAPER_LINK_SELECTOR", "h3 a"),
			Source:  getEnv("SCRAPER_SOURCE_SELECTOR", "div[data-n-tid]"),
			Snippet: getEnv("SCRAPER_SNIPPET_SELECTOR", ""),
		},
		CronSpec: getEnv("CRON_SPEC", "*/30 * * * *"),
	}

	log.Printf("config loaded: port=%s page=%s feeds=%d cron=%s",
		cfg.AppPort, cfg.NewsPageURL, len(cfg.FeedSources()), cfg.CronSpec)
	return cfg
}

// Validate checks the parts of the config that must be right at startup.
func (c *Config) Validate() error {
	if c.NewsPageURL != "" {
		if err := c.Selectors.Validate(); err != nil {
			return fmt.Errorf("scraper selectors: %w", err)
		}
	}
	return nil
}

// FeedSources splits FEED_URLS into individual feed URLs.
func (c *Config) FeedSources() []string {
	if strings.TrimSpace(c.FeedURLs) == "" {
		return nil
	}
	parts := strings.Split(c.FeedURLs, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
