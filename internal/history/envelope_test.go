package history

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/buybuddy-ai/buybuddy/internal/models"
)

type capturePublisher struct {
	bodies [][]byte
	err    error
}

func (p *capturePublisher) Publish(ctx context.Context, body []byte) error {
	_ = ctx
	if p.err != nil {
		return p.err
	}
	p.bodies = append(p.bodies, body)
	return nil
}

func TestQueueRecorder_PublishesEnvelopes(t *testing.T) {
	pub := &capturePublisher{}
	rec := NewQueueRecorder(pub)
	ctx := context.Background()

	q := &models.StructuredQuery{ProductType: "laptop"}
	rec.RecordConversation(ctx, "s1", "buy a laptop", "here you go", q)
	rec.RecordSearch(ctx, "s1", "laptop", q, 3)
	rec.CacheProducts(ctx, []models.Product{{Name: "L", Link: "l1"}}, "laptop")

	if len(pub.bodies) != 3 {
		t.Fatalf("expected 3 published records, got %d", len(pub.bodies))
	}

	var env Envelope
	if err := json.Unmarshal(pub.bodies[0], &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Kind != KindConversation || env.Conversation == nil {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Conversation.UserMessage != "buy a laptop" {
		t.Fatalf("unexpected payload: %+v", env.Conversation)
	}
	if env.Conversation.StructuredQuery == nil || env.Conversation.StructuredQuery.ProductType != "laptop" {
		t.Fatalf("query snapshot lost: %+v", env.Conversation.StructuredQuery)
	}
}

func TestQueueRecorder_SwallowsPublishErrors(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	rec := NewQueueRecorder(pub)

	// must not panic or surface the error
	rec.RecordConversation(context.Background(), "s1", "hi", "hello", nil)
	rec.RecordSearch(context.Background(), "s1", "q", nil, 0)
	rec.CacheProducts(context.Background(), nil, "q")
}
