package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/buybuddy-ai/buybuddy/internal/ai"
	"github.com/buybuddy-ai/buybuddy/internal/models"
	"github.com/buybuddy-ai/buybuddy/internal/pricing"
)

const summarizerSystemPrompt = `You are BuyBuddy, a friendly shopping assistant.
Generate a natural, helpful message to introduce product search results.
Acknowledge what the user was looking for, mention the number of products
found, briefly cite 2-3 interesting products with their prices, and mention
the best deal if available. Be friendly but concise (2-3 sentences max).
Return ONLY the message text, no JSON, no explanations.`

type SummaryInput struct {
	UserMessage string
	Query       models.StructuredQuery
	Products    []models.Product
	Comparison  *pricing.Comparison
}

type Summarizer struct {
	provider ai.Provider
}

func NewSummarizer(p ai.Provider) *Summarizer {
	return &Summarizer{provider: p}
}

// Summarize produces the message accompanying product results. Callers must
// treat any error as recoverable and use FallbackMessage instead.
func (s *Summarizer) Summarize(ctx context.Context, in SummaryInput) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "User's original request: %q\n\n", in.UserMessage)
	fmt.Fprintf(&b, "Products found: %d %s\n\n", len(in.Products), productLabel(in.Query))

	b.WriteString("Product details:\n")
	for i, p := range in.Products {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "%d. %s", i+1, p.Name)
		if p.Price != "" {
			fmt.Fprintf(&b, " - %s", p.Price)
		}
		if p.Platform != "" {
			fmt.Fprintf(&b, " (%s)", p.Platform)
		}
		b.WriteString("\n")
	}

	if platforms := platformList(in.Products); platforms != "" {
		fmt.Fprintf(&b, "\nAvailable platforms: %s\n", platforms)
	}
	if best := bestDealLine(in.Comparison); best != "" {
		b.WriteString(best + "\n")
	}
	if loc := locationLabel(in.Query); loc != "" {
		fmt.Fprintf(&b, "Available in: %s\n", loc)
	}

	reply, err := s.provider.Chat(ctx, []ai.Message{
		{Role: "system", Content: summarizerSystemPrompt},
		{Role: "user", Content: b.String()},
	})
	if err != nil {
		return "", err
	}

	reply = cleanSummaryReply(reply)
	if reply == "" {
		return "", errors.New("summarizer: empty reply")
	}
	return reply, nil
}

// FallbackMessage is the deterministic template used when summarization
// fails. The workflow must never fail because of this cosmetic step.
func FallbackMessage(in SummaryInput) string {
	label := productLabel(in.Query)

	var msg string
	if loc := locationLabel(in.Query); loc != "" {
		msg = fmt.Sprintf("I found %d %s available in %s.", len(in.Products), label, loc)
	} else {
		msg = fmt.Sprintf("I found %d %s for you.", len(in.Products), label)
	}

	if best := bestDealLine(in.Comparison); best != "" {
		msg += " " + best
	}
	return msg
}

func productLabel(q models.StructuredQuery) string {
	label := q.ProductType
	if label == "" {
		label = "products"
	}
	if q.Category != "" {
		label += " " + q.Category
	}
	return label
}

func locationLabel(q models.StructuredQuery) string {
	if q.DeliveryLocation != "" {
		return q.DeliveryLocation
	}
	return q.Location
}

func bestDealLine(c *pricing.Comparison) string {
	if c == nil || c.BestDeal == nil {
		return ""
	}
	platform := c.BestDeal.Platform
	if platform == "" {
		platform = "an unknown platform"
	}
	return fmt.Sprintf("The best price found is %s on %s.", c.BestDeal.Price, platform)
}

func platformList(products []models.Product) string {
	seen := make(map[string]struct{})
	names := make([]string, 0, 4)
	for _, p := range products {
		if p.Platform == "" {
			continue
		}
		if _, ok := seen[p.Platform]; ok {
			continue
		}
		seen[p.Platform] = struct{}{}
		names = append(names, p.Platform)
	}
	extra := 0
	if len(names) > 4 {
		extra = len(names) - 4
		names = names[:4]
	}
	out := strings.Join(names, ", ")
	if extra > 0 {
		out += fmt.Sprintf(" and %d more", extra)
	}
	return out
}

// cleanSummaryReply unwraps replies the model mistakenly returned as JSON.
func cleanSummaryReply(reply string) string {
	reply = strings.TrimSpace(ai.StripJSONFences(reply))
	if !strings.HasPrefix(reply, "{") {
		return reply
	}

	var wrapped map[string]any
	if err := json.Unmarshal([]byte(reply), &wrapped); err != nil {
		return reply
	}
	for _, key := range []string{"message", "response", "text"} {
		if v, ok := wrapped[key].(string); ok && v != "" {
			return strings.TrimSpace(v)
		}
	}
	return reply
}
