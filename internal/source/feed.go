package source

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedFetcher pulls one RSS/Atom feed.
type FeedFetcher struct {
	URL    string
	parser *gofeed.Parser
}

func NewFeedFetcher(feedURL, userAgent string) *FeedFetcher {
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	return &FeedFetcher{URL: feedURL, parser: p}
}

func (f *FeedFetcher) Name() string {
	if u, err := url.Parse(f.URL); err == nil && u.Host != "" {
		return "feed:" + u.Host
	}
	return "feed:" + f.URL
}

func (f *FeedFetcher) Fetch(ctx context.Context) ([]Entry, error) {
	log.Printf("fetch feed %s ...", f.URL)

	feed, err := f.parser.ParseURLWithContext(f.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w: %w", f.URL, classifyFeedErr(err), err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		var pub time.Time
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}

		snippet := item.Description
		if snippet == "" {
			snippet = item.Content
		}

		extra := map[string]any{}
		if item.GUID != "" {
			extra["guid"] = item.GUID
		}
		if item.Published != "" {
			extra["published"] = item.Published
		}

		entries = append(entries, Entry{
			Kind:      KindFeed,
			Title:     item.Title,
			Link:      item.Link,
			Source:    feed.Title,
			Snippet:   snippet,
			Origin:    f.URL,
			Published: pub,
			Extra:     extra,
		})
	}
	return entries, nil
}

// classifyFeedErr splits gofeed failures into the fetch/parse taxonomy:
// transport and HTTP status problems are fetch errors, everything else is
// malformed feed content.
func classifyFeedErr(err error) error {
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return ErrFetch
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ErrFetch
	}
	return ErrParse
}
