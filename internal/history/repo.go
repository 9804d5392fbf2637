// Package history is the append-only audit log of conversations, searches and
// the product cache.
package history

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/buybuddy-ai/buybuddy/internal/models"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Conversation{}, &Search{}, &CachedProduct{})
}

func (r *Repo) SaveConversation(ctx context.Context, c *Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// ListConversations returns the most recent conversations for a session,
// newest first.
func (r *Repo) ListConversations(ctx context.Context, sessionID string, limit int) ([]Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var out []Conversation
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *Repo) SaveSearch(ctx context.Context, s *Search) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// ListSearches returns recent searches, newest first. An empty sessionID
// returns searches across all sessions.
func (r *Repo) ListSearches(ctx context.Context, sessionID string, limit int) ([]Search, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if sessionID != "" {
		q = q.Where("session_id = ?", sessionID)
	}
	var out []Search
	err := q.Find(&out).Error
	return out, err
}

// CacheProducts upserts products by link so a product re-surfaced by a later
// search refreshes its cache row instead of failing the unique index.
func (r *Repo) CacheProducts(ctx context.Context, products []models.Product, searchQuery string) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]CachedProduct, 0, len(products))
	for _, p := range products {
		if p.Link == "" {
			continue
		}
		rows = append(rows, CachedProduct{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Link:        p.Link,
			Platform:    p.Platform,
			Image:       p.Image,
			SearchQuery: searchQuery,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "link"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "price", "platform", "image", "search_query", "cached_at"}),
		}).
		Create(&rows).Error
}

// FindCachedProducts returns cached products whose originating search query
// contains the given text, most recently cached first.
func (r *Repo) FindCachedProducts(ctx context.Context, searchQuery string, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []CachedProduct
	err := r.db.WithContext(ctx).
		Where("search_query LIKE ?", "%"+searchQuery+"%").
		Order("cached_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Product{
			Name:        row.Name,
			Description: row.Description,
			Price:       row.Price,
			Link:        row.Link,
			Platform:    row.Platform,
			Image:       row.Image,
		})
	}
	return out, nil
}

func marshalQuery(q *models.StructuredQuery) string {
	if q == nil {
		return ""
	}
	b, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	return string(b)
}
