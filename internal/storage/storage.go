package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrStore marks read/write failures against the persistence layer, as
// opposed to application-level conditions like a duplicate article.
var ErrStore = errors.New("store failure")

const (
	snippetColumnLimit = 600
	listCacheTTL       = time.Minute
)

// Article is the unit of storage. ID is the sha256 hex of the canonical
// article URL; rows are created once and never updated or deleted.
type Article struct {
	ID         string            `gorm:"primaryKey;size:64" json:"id"`
	Title      string            `gorm:"size:512" json:"title"`
	URL        string            `gorm:"size:1024;uniqueIndex" json:"article_url"`
	Source     string            `gorm:"size:128" json:"source_name"`
	Snippet    string            `gorm:"size:600" json:"snippet"`
	OriginURL  string            `gorm:"size:1024" json:"origin_url"`
	CapturedAt time.Time         `gorm:"index" json:"captured_at"`
	Extra      datatypes.JSONMap `gorm:"type:jsonb" json:"extraData,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// SourceState keeps per-source fetch bookkeeping so operators can spot a
// source that silently started returning zero entries.
type SourceState struct {
	Name      string    `gorm:"primaryKey;size:128" json:"name"`
	LastRunAt time.Time `json:"lastRunAt"`
	LastCount int       `json:"lastCount"`
	FailCount int       `json:"failCount"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Article{}, &SourceState{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// Exists reports whether an article with the given ID is already stored.
// Point lookup by primary key, never a scan.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var a Article
	err := s.DB.WithContext(ctx).Select("id").Take(&a, "id = ?", id).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("%w: exists %s: %v", ErrStore, id, err)
}

// SaveArticle inserts a new article row. Two invocations racing on the same
// URL both pass the existence check; the unique index on url turns the
// loser's insert into an error, which the caller counts as failed.
func (s *Store) SaveArticle(ctx context.Context, a *Article) error {
	a.Title = toValidUTF8(a.Title)
	a.Source = toValidUTF8(a.Source)
	// Second line of defense behind the normalizer's rune limit, so an
	// oversized snippet never fails the insert on varchar(600).
	a.Snippet = truncateRunes(toValidUTF8(a.Snippet), snippetColumnLimit)

	if err := s.DB.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrStore, a.ID, err)
	}
	return nil
}

// ListArticles returns one page ordered by capture time, newest first.
// Results are cached in Redis for a short TTL keyed by the page window.
func (s *Store) ListArticles(ctx context.Context, limit, offset int) ([]Article, error) {
	cacheKey := fmt.Sprintf("news:list:%d:%d", limit, offset)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Article
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []Article
	err := s.DB.WithContext(ctx).
		Model(&Article{}).
		Order("captured_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list limit=%d offset=%d: %v", ErrStore, limit, offset, err)
	}

	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}

	return list, nil
}

// TouchSourceState records the outcome of one fetch pass for a source.
func (s *Store) TouchSourceState(name string, count int, failed bool) error {
	st := SourceState{Name: name}
	if err := s.DB.Where("name = ?", name).FirstOrCreate(&st).Error; err != nil {
		return fmt.Errorf("%w: source state %s: %v", ErrStore, name, err)
	}

	updates := map[string]any{
		"last_run_at": time.Now(),
		"last_count":  count,
	}
	if failed {
		updates["fail_count"] = gorm.Expr("fail_count + 1")
	}
	if err := s.DB.Model(&st).Updates(updates).Error; err != nil {
		return fmt.Errorf("%w: source state %s: %v", ErrStore, name, err)
	}
	return nil
}

// toValidUTF8 normalizes text to valid UTF-8 so feed content with broken
// encodings cannot fail the Postgres insert.
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
