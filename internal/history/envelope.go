package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/buybuddy-ai/buybuddy/internal/models"
)

type RecordKind string

const (
	KindConversation RecordKind = "conversation"
	KindSearch       RecordKind = "search"
	KindProducts     RecordKind = "products"
)

// Envelope is the message shape published to the history queue and consumed
// by the worker. Exactly one payload field is set, matching Kind.
type Envelope struct {
	Kind         RecordKind          `json:"kind"`
	Conversation *ConversationRecord `json:"conversation,omitempty"`
	Search       *SearchRecord       `json:"search,omitempty"`
	Products     *ProductsRecord     `json:"products,omitempty"`
}

type ConversationRecord struct {
	SessionID       string                  `json:"session_id"`
	UserMessage     string                  `json:"user_message"`
	AssistantText   string                  `json:"assistant_text,omitempty"`
	StructuredQuery *models.StructuredQuery `json:"structured_query,omitempty"`
}

type SearchRecord struct {
	SessionID       string                  `json:"session_id"`
	QueryText       string                  `json:"query_text"`
	StructuredQuery *models.StructuredQuery `json:"structured_query,omitempty"`
	ResultCount     int                     `json:"result_count"`
}

type ProductsRecord struct {
	Products  []models.Product `json:"products"`
	QueryText string           `json:"query_text"`
}

// Publisher is the byte-level queue the QueueRecorder publishes to.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// QueueRecorder hands records to a message queue; the history worker drains
// the queue into the database.
type QueueRecorder struct {
	pub Publisher
}

func NewQueueRecorder(pub Publisher) *QueueRecorder {
	return &QueueRecorder{pub: pub}
}

func (r *QueueRecorder) publish(ctx context.Context, env Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		slog.Warn("failed to encode history record", "kind", env.Kind, "err", err)
		return
	}
	if err := r.pub.Publish(ctx, body); err != nil {
		slog.Warn("failed to publish history record", "kind", env.Kind, "err", err)
	}
}

func (r *QueueRecorder) RecordConversation(ctx context.Context, sessionID, userMessage, assistantText string, q *models.StructuredQuery) {
	r.publish(ctx, Envelope{Kind: KindConversation, Conversation: &ConversationRecord{
		SessionID:       sessionID,
		UserMessage:     userMessage,
		AssistantText:   assistantText,
		StructuredQuery: q,
	}})
}

func (r *QueueRecorder) RecordSearch(ctx context.Context, sessionID, queryText string, q *models.StructuredQuery, resultCount int) {
	r.publish(ctx, Envelope{Kind: KindSearch, Search: &SearchRecord{
		SessionID:       sessionID,
		QueryText:       queryText,
		StructuredQuery: q,
		ResultCount:     resultCount,
	}})
}

func (r *QueueRecorder) CacheProducts(ctx context.Context, products []models.Product, queryText string) {
	r.publish(ctx, Envelope{Kind: KindProducts, Products: &ProductsRecord{
		Products:  products,
		QueryText: queryText,
	}})
}

// Apply writes one queued record to the database.
func (env Envelope) Apply(ctx context.Context, repo *Repo) error {
	switch env.Kind {
	case KindConversation:
		if env.Conversation == nil {
			return fmt.Errorf("history: %s envelope missing payload", env.Kind)
		}
		return repo.SaveConversation(ctx, &Conversation{
			SessionID:         env.Conversation.SessionID,
			UserMessage:       env.Conversation.UserMessage,
			AssistantResponse: env.Conversation.AssistantText,
			StructuredQuery:   marshalQuery(env.Conversation.StructuredQuery),
		})
	case KindSearch:
		if env.Search == nil {
			return fmt.Errorf("history: %s envelope missing payload", env.Kind)
		}
		return repo.SaveSearch(ctx, &Search{
			SessionID:       env.Search.SessionID,
			QueryText:       env.Search.QueryText,
			StructuredQuery: marshalQuery(env.Search.StructuredQuery),
			NumResults:      env.Search.ResultCount,
		})
	case KindProducts:
		if env.Products == nil {
			return fmt.Errorf("history: %s envelope missing payload", env.Kind)
		}
		return repo.CacheProducts(ctx, env.Products.Products, env.Products.QueryText)
	default:
		return fmt.Errorf("history: unknown record kind %q", env.Kind)
	}
}
