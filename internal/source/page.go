package source

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"newswatch/internal/config"
)

const pageRequestTimeout = 15 * time.Second

// PageFetcher scrapes repeating article blocks out of an HTML listing page
// using configured selectors. Selector drift yields zero entries, not an
// error; callers watch the count.
type PageFetcher struct {
	URL       string
	UserAgent string
	Selectors config.Selectors
}

func NewPageFetcher(pageURL, userAgent string, sel config.Selectors) *PageFetcher {
	return &PageFetcher{URL: pageURL, UserAgent: userAgent, Selectors: sel}
}

func (p *PageFetcher) Name() string {
	if u, err := url.Parse(p.URL); err == nil && u.Host != "" {
		return "page:" + u.Host
	}
	return "page:" + p.URL
}

func (p *PageFetcher) Fetch(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("page %s: %w: %w", p.URL, ErrFetch, err)
	}
	log.Printf("fetch page %s ...", p.URL)

	c := colly.NewCollector(colly.UserAgent(p.UserAgent))
	c.SetRequestTimeout(pageRequestTimeout)

	entries := make([]Entry, 0, 50)

	c.OnHTML(p.Selectors.Item, func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.ChildText(p.Selectors.Title))

		href := e.ChildAttr(p.Selectors.Link, "href")
		if href == "" {
			// The link selector often targets the title anchor; fall back
			// to the first anchor in the block when it misses.
			href = firstAnchorHref(e.DOM)
		}
		if href == "" {
			return
		}

		src := strings.TrimSpace(e.ChildText(p.Selectors.Source))
		snippet := ""
		if p.Selectors.Snippet != "" {
			snippet = strings.TrimSpace(e.ChildText(p.Selectors.Snippet))
		}

		entries = append(entries, Entry{
			Kind:    KindPage,
			Title:   title,
			Link:    e.Request.AbsoluteURL(href),
			Source:  src,
			Snippet: snippet,
			Origin:  p.URL,
			Extra:   map[string]any{"raw_href": href},
		})
	})

	if err := c.Visit(p.URL); err != nil {
		return nil, fmt.Errorf("page %s: %w: %w", p.URL, ErrFetch, err)
	}

	if len(entries) == 0 {
		// Valid outcome: usually means the page DOM moved out from under
		// the configured selectors.
		log.Printf("page %s: 0 blocks matched selector %q", p.URL, p.Selectors.Item)
	}
	return entries, nil
}

func firstAnchorHref(sel *goquery.Selection) string {
	href := ""
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		v, ok := a.Attr("href")
		v = strings.TrimSpace(v)
		if ok && v != "" {
			href = v
			return false
		}
		return true
	})
	return href
}
