// Package session holds per-session search state: the last structured query
// and the set of product links already shown.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/buybuddy-ai/buybuddy/internal/models"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID                  string                  `json:"id"`
	LastStructuredQuery *models.StructuredQuery `json:"last_structured_query,omitempty"`
	ExcludedLinks       []string                `json:"excluded_links"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

// Store persists sessions across requests. Update merges the given excluded
// links into the stored set (the set only grows; concurrent updates must not
// lose entries) and replaces the last structured query when one is given.
type Store interface {
	Create(ctx context.Context) (string, error)
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, excludedLinks []string, query *models.StructuredQuery) error
}

// NewSessionID returns a 26-char ULID.
func NewSessionID() string {
	return ulid.Make().String()
}

// mergeLinks unions extra into base, preserving base order and first-seen
// order of the additions.
func mergeLinks(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, l := range base {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	for _, l := range extra {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
