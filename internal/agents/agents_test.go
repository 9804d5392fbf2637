package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/buybuddy-ai/buybuddy/internal/ai"
	"github.com/buybuddy-ai/buybuddy/internal/models"
	"github.com/buybuddy-ai/buybuddy/internal/pricing"
)

type cannedProvider struct {
	reply string
	err   error
	last  []ai.Message
}

func (p *cannedProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	_ = ctx
	p.last = append([]ai.Message(nil), messages...)
	return p.reply, p.err
}

func TestClassifier_ParsesReply(t *testing.T) {
	prov := &cannedProvider{reply: `{"is_conversational": true, "response": "Hi! I'm BuyBuddy."}`}
	c := NewClassifier(prov)

	cls, err := c.Classify(context.Background(), "hello")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !cls.IsConversational || cls.Response != "Hi! I'm BuyBuddy." {
		t.Fatalf("unexpected classification: %+v", cls)
	}
}

func TestClassifier_StripsMarkdownFences(t *testing.T) {
	prov := &cannedProvider{reply: "```json\n{\"is_conversational\": false, \"response\": null}\n```"}
	c := NewClassifier(prov)

	cls, err := c.Classify(context.Background(), "find me shoes")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if cls.IsConversational {
		t.Fatalf("expected product search classification")
	}
}

func TestClassifier_ProviderErrorSurfaces(t *testing.T) {
	prov := &cannedProvider{err: errors.New("connection refused")}
	c := NewClassifier(prov)

	if _, err := c.Classify(context.Background(), "hello"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestExtractor_ParsesFullQuery(t *testing.T) {
	prov := &cannedProvider{reply: `{
		"product_type": "dress",
		"category": "evening",
		"max_price": 92,
		"features": ["long", "black"],
		"query_text": "evening dress under 100 dollars",
		"location": "france",
		"condition": "new"
	}`}
	e := NewExtractor(prov)

	q, err := e.Extract(context.Background(), "robe de soiree moins de 100 dollar")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if q.ProductType != "dress" || q.Category != "evening" {
		t.Fatalf("unexpected query: %+v", q)
	}
	if q.MaxPrice == nil || *q.MaxPrice != 92 {
		t.Fatalf("unexpected max price: %v", q.MaxPrice)
	}
	if len(q.Features) != 2 {
		t.Fatalf("unexpected features: %v", q.Features)
	}
	if q.Location != "france" || q.Condition != "new" {
		t.Fatalf("unexpected location/condition: %+v", q)
	}
}

func TestExtractor_QueryTextFallsBackToMessage(t *testing.T) {
	prov := &cannedProvider{reply: `{"product_type": "laptop"}`}
	e := NewExtractor(prov)

	q, err := e.Extract(context.Background(), "gaming laptop cheap")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if q.QueryText != "gaming laptop cheap" {
		t.Fatalf("expected raw-message fallback, got %q", q.QueryText)
	}
	if q.Features == nil {
		t.Fatalf("expected non-nil features slice")
	}
}

func TestExtractor_BadJSONIsError(t *testing.T) {
	prov := &cannedProvider{reply: "sorry, I can't help with that"}
	e := NewExtractor(prov)

	if _, err := e.Extract(context.Background(), "laptop"); err == nil {
		t.Fatalf("expected error for non-JSON reply")
	}
}

func TestSummarizer_ReturnsCleanedReply(t *testing.T) {
	prov := &cannedProvider{reply: "I found 3 great laptops for you!"}
	s := NewSummarizer(prov)

	msg, err := s.Summarize(context.Background(), SummaryInput{
		UserMessage: "buy a laptop",
		Query:       models.StructuredQuery{ProductType: "laptop"},
		Products:    []models.Product{{Name: "L1", Price: "€500", Platform: "Amazon"}},
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if msg != "I found 3 great laptops for you!" {
		t.Fatalf("unexpected message: %q", msg)
	}

	// the prompt must carry the product details
	user := prov.last[len(prov.last)-1].Content
	if !strings.Contains(user, "L1") || !strings.Contains(user, "€500") {
		t.Fatalf("prompt missing product details: %q", user)
	}
}

func TestSummarizer_UnwrapsJSONReply(t *testing.T) {
	prov := &cannedProvider{reply: `{"message": "Here are your laptops."}`}
	s := NewSummarizer(prov)

	msg, err := s.Summarize(context.Background(), SummaryInput{
		Query:    models.StructuredQuery{ProductType: "laptop"},
		Products: []models.Product{{Name: "L1"}},
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if msg != "Here are your laptops." {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestSummarizer_EmptyReplyIsError(t *testing.T) {
	prov := &cannedProvider{reply: "   "}
	s := NewSummarizer(prov)

	if _, err := s.Summarize(context.Background(), SummaryInput{}); err == nil {
		t.Fatalf("expected error for empty reply")
	}
}

func TestFallbackMessage(t *testing.T) {
	best := models.Product{Name: "L1", Price: "€450", Platform: "Amazon"}
	in := SummaryInput{
		Query:    models.StructuredQuery{ProductType: "laptop", Category: "gaming", Location: "france"},
		Products: []models.Product{best, {Name: "L2"}},
		Comparison: &pricing.Comparison{
			BestDeal: &best,
		},
	}

	msg := FallbackMessage(in)
	want := "I found 2 laptop gaming available in france. The best price found is €450 on Amazon."
	if msg != want {
		t.Fatalf("got %q, want %q", msg, want)
	}

	plain := FallbackMessage(SummaryInput{Products: []models.Product{{Name: "X"}}})
	if plain != "I found 1 products for you." {
		t.Fatalf("unexpected plain message: %q", plain)
	}
}

func TestPlatformList(t *testing.T) {
	products := []models.Product{
		{Platform: "Amazon"}, {Platform: "eBay"}, {Platform: "Amazon"},
		{Platform: "Fnac"}, {Platform: "Zalando"}, {Platform: "Cdiscount"},
	}
	got := platformList(products)
	if got != "Amazon, eBay, Fnac, Zalando and 1 more" {
		t.Fatalf("unexpected platform list: %q", got)
	}
}
