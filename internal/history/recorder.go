package history

import (
	"context"
	"log/slog"

	"github.com/buybuddy-ai/buybuddy/internal/models"
)

// Recorder is the fire-and-forget persistence log the workflow writes to.
// Implementations log failures and never surface them to the caller.
type Recorder interface {
	RecordConversation(ctx context.Context, sessionID, userMessage, assistantText string, q *models.StructuredQuery)
	RecordSearch(ctx context.Context, sessionID, queryText string, q *models.StructuredQuery, resultCount int)
	CacheProducts(ctx context.Context, products []models.Product, queryText string)
}

// DBRecorder writes records straight to the database. Used when no message
// queue is configured, and in tests.
type DBRecorder struct {
	repo *Repo
}

func NewDBRecorder(repo *Repo) *DBRecorder {
	return &DBRecorder{repo: repo}
}

func (r *DBRecorder) RecordConversation(ctx context.Context, sessionID, userMessage, assistantText string, q *models.StructuredQuery) {
	err := r.repo.SaveConversation(ctx, &Conversation{
		SessionID:         sessionID,
		UserMessage:       userMessage,
		AssistantResponse: assistantText,
		StructuredQuery:   marshalQuery(q),
	})
	if err != nil {
		slog.Warn("failed to record conversation", "session_id", sessionID, "err", err)
	}
}

func (r *DBRecorder) RecordSearch(ctx context.Context, sessionID, queryText string, q *models.StructuredQuery, resultCount int) {
	err := r.repo.SaveSearch(ctx, &Search{
		SessionID:       sessionID,
		QueryText:       queryText,
		StructuredQuery: marshalQuery(q),
		NumResults:      resultCount,
	})
	if err != nil {
		slog.Warn("failed to record search", "session_id", sessionID, "err", err)
	}
}

func (r *DBRecorder) CacheProducts(ctx context.Context, products []models.Product, queryText string) {
	if err := r.repo.CacheProducts(ctx, products, queryText); err != nil {
		slog.Warn("failed to cache products", "query", queryText, "err", err)
	}
}
