package api

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"newswatch/internal/pipeline"
	"newswatch/internal/storage"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	// Header asserting the request comes from the periodic trigger.
	schedulerHeader = "X-Scheduler-Token"
)

// ArticleLister is the read side of the store the API needs.
type ArticleLister interface {
	ListArticles(ctx context.Context, limit, offset int) ([]storage.Article, error)
}

// IngestRunner triggers one ingestion pass.
type IngestRunner interface {
	Run(ctx context.Context) pipeline.Result
}

type Server struct {
	store  ArticleLister
	ingest IngestRunner
	token  string
}

func NewServer(store ArticleLister, ingest IngestRunner, schedulerToken string) *Server {
	return &Server{store: store, ingest: ingest, token: schedulerToken}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/", s.root)
	r.GET("/health", s.health)
	r.GET("/news/google", s.listNews)
	r.POST("/tasks/scrape/google-news", s.runScrape)
}

func (s *Server) root(c *gin.Context) {
	c.String(http.StatusOK, "newswatch is running")
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// runScrape handles the periodic trigger. Only callers presenting the
// configured scheduler token may start a pass.
func (s *Server) runScrape(c *gin.Context) {
	got := c.GetHeader(schedulerHeader)
	if s.token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
		log.Printf("scrape trigger rejected: missing or invalid %s header", schedulerHeader)
		c.JSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": "unauthorized: invalid or missing scheduler token",
		})
		return
	}

	res := s.ingest.Run(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"status":                     "success",
		"message":                    fmt.Sprintf("scrape finished, added %d new articles", res.Added),
		"articles_processed":         res.Processed,
		"articles_added":             res.Added,
		"articles_failed_or_skipped": res.Failed + res.Skipped,
	})
}

func (s *Server) listNews(c *gin.Context) {
	limit, offset, err := parsePageParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	items, err := s.store.ListArticles(c.Request.Context(), limit, offset)
	if err != nil {
		// Internal detail stays in the log, not the response body.
		log.Printf("list news error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "internal server error: failed to retrieve articles",
		})
		return
	}

	articles := make([]gin.H, 0, len(items))
	for _, a := range items {
		articles = append(articles, gin.H{
			"id":          a.ID,
			"title":       a.Title,
			"article_url": a.URL,
			"source_name": a.Source,
			"snippet":     a.Snippet,
			"origin_url":  a.OriginURL,
			"captured_at": a.CapturedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"articles": articles,
		"limit":    limit,
		"offset":   offset,
	})
}

// parsePageParams validates limit/offset before any store access.
// Out-of-range values are rejected, not clamped.
func parsePageParams(c *gin.Context) (limit, offset int, err error) {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(defaultLimit))
	offsetStr := c.DefaultQuery("offset", "0")

	limit, err = strconv.Atoi(limitStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid limit parameter %q: must be an integer", limitStr)
	}
	offset, err = strconv.Atoi(offsetStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid offset parameter %q: must be an integer", offsetStr)
	}

	if limit < 1 || limit > maxLimit {
		return 0, 0, fmt.Errorf("invalid limit %d: must be between 1 and %d", limit, maxLimit)
	}
	if offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset %d: must be non-negative", offset)
	}
	return limit, offset, nil
}
