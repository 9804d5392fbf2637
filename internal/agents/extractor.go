package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/buybuddy-ai/buybuddy/internal/ai"
	"github.com/buybuddy-ai/buybuddy/internal/models"
)

const extractorSystemPrompt = `You are a shopping assistant that extracts
structured information from user product queries and returns it as JSON.

Fields:
- product_type: main product category in English (e.g. "laptop", "dress")
- category: subcategory in English (e.g. "gaming", "evening"), or null
- max_price / min_price: price bounds in EUROS (convert dollars at 1 USD = 0.92 EUR, round to integer), or null
- brand: brand name, or null
- features: list of features mentioned
- query_text: optimized English search query (translate if needed)
- location: country or region in lowercase (e.g. "canada", "france"), or null
- delivery_location: city or neighborhood in lowercase (e.g. "montreal"), or null
- condition: product condition in English ("new", "used", "refurbished"), or null
- style: product style in English ("casual", "formal", "sport", "vintage"), or null

Examples:
- "robe de soiree moins de 100 dollar" -> {"product_type":"dress","category":"evening","max_price":92,"query_text":"evening dress under 100 dollars"}
- "laptop gaming sous 1500 euros" -> {"product_type":"laptop","category":"gaming","max_price":1500,"query_text":"gaming laptop under 1500 euros"}
- "air force 1 that i can order in canada" -> {"product_type":"shoes","category":"sneakers","query_text":"air force 1","location":"canada"}
- "sneakers occasion casual" -> {"product_type":"shoes","category":"sneakers","query_text":"casual sneakers","condition":"used","style":"casual"}

Return ONLY valid JSON with these fields. Use null for missing information.`

type Extractor struct {
	provider ai.Provider
}

func NewExtractor(p ai.Provider) *Extractor {
	return &Extractor{provider: p}
}

// Extract parses a user message into a structured query. Every field except
// ProductType and QueryText may come back empty; QueryText falls back to the
// raw message when the model returns none.
func (e *Extractor) Extract(ctx context.Context, message string) (models.StructuredQuery, error) {
	prompt := fmt.Sprintf("Analyze this user query and extract product information:\n\nUser query: %q", message)

	var out models.StructuredQuery
	if err := ai.GenerateJSON(ctx, e.provider, extractorSystemPrompt, prompt, &out); err != nil {
		return models.StructuredQuery{}, fmt.Errorf("extract query: %w", err)
	}

	if strings.TrimSpace(out.QueryText) == "" {
		out.QueryText = message
	}
	if out.Features == nil {
		out.Features = []string{}
	}
	return out, nil
}
