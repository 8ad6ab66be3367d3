package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"html"
	"net/url"
	"regexp"
	"strings"

	"gorm.io/datatypes"

	"newswatch/internal/source"
	"newswatch/internal/storage"
)

// SnippetRuneLimit bounds the stored snippet length.
const SnippetRuneLimit = 300

var reTag = regexp.MustCompile(`<[^>]*>`)

// Normalize turns a raw entry into an article candidate. A missing or
// non-absolute URL makes the entry unusable (ok=false); every other field
// degrades to its default instead of failing the entry.
func Normalize(e source.Entry) (storage.Article, bool) {
	link := strings.TrimSpace(e.Link)
	if link == "" {
		return storage.Article{}, false
	}
	u, err := url.Parse(link)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return storage.Article{}, false
	}

	a := storage.Article{
		ID:        ArticleID(link),
		Title:     cleanText(e.Title),
		URL:       link,
		Source:    cleanText(e.Source),
		Snippet:   truncateRunes(cleanText(e.Snippet), SnippetRuneLimit),
		OriginURL: strings.TrimSpace(e.Origin),
	}
	if len(e.Extra) > 0 {
		a.Extra = datatypes.JSONMap(e.Extra)
	}
	return a, true
}

// ArticleID derives the storage key from the canonical article URL.
// sha256 hex: deterministic across runs and free of characters a key
// syntax could object to.
func ArticleID(articleURL string) string {
	sum := sha256.Sum256([]byte(articleURL))
	return hex.EncodeToString(sum[:])
}

// cleanText strips markup, decodes HTML entities and collapses the
// surrounding whitespace feed descriptions tend to carry.
func cleanText(s string) string {
	s = reTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}
