package source

import (
	"context"
	"errors"
	"time"

	"newswatch/internal/config"
)

// EntryKind tags where a raw entry came from, so the normalizer can apply
// per-source defaults without attribute sniffing.
type EntryKind string

const (
	KindFeed EntryKind = "feed"
	KindPage EntryKind = "page"
)

// Entry is one raw item pulled from a source before normalization.
// Only Link is mandatory downstream; everything else may be empty.
type Entry struct {
	Kind      EntryKind
	Title     string
	Link      string
	Source    string
	Snippet   string
	Origin    string // URL of the feed or listing page the entry came from
	Published time.Time
	Extra     map[string]any
}

// Per-URL failure kinds. A failing source never aborts its siblings.
var (
	ErrFetch = errors.New("fetch failed")
	ErrParse = errors.New("parse failed")
)

// Fetcher abstracts one configured source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]Entry, error)
}

// FromConfig builds the fetcher set for the configured sources.
func FromConfig(cfg *config.Config) []Fetcher {
	var fetchers []Fetcher
	for _, u := range cfg.FeedSources() {
		fetchers = append(fetchers, NewFeedFetcher(u, cfg.UserAgent))
	}
	if cfg.NewsPageURL != "" {
		fetchers = append(fetchers, NewPageFetcher(cfg.NewsPageURL, cfg.UserAgent, cfg.Selectors))
	}
	return fetchers
}
