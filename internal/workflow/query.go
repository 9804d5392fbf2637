package workflow

import (
	"fmt"
	"strings"

	"github.com/buybuddy-ai/buybuddy/internal/models"
)

// eurPerUSD is the fixed conversion rate used throughout extraction and
// filtering (1 USD = 0.92 EUR).
const eurPerUSD = 0.92

// buildSearchQuery turns a structured query into the text sent to the product
// source. The extractor's query text is preferred when substantial; otherwise
// the query is assembled from components. City-level delivery location,
// condition and style ride along in the query text, while country-level
// location is passed to the source separately.
func buildSearchQuery(q models.StructuredQuery) string {
	query := q.QueryText
	if len(strings.TrimSpace(query)) <= 10 {
		parts := make([]string, 0, 6)
		if q.Brand != "" {
			parts = append(parts, q.Brand)
		}
		if q.ProductType != "" {
			parts = append(parts, q.ProductType)
		}
		if q.Category != "" {
			parts = append(parts, q.Category)
		}
		for i, f := range q.Features {
			if i >= 3 {
				break
			}
			parts = append(parts, f)
		}
		if len(parts) == 0 {
			parts = append(parts, "product")
		}
		query = strings.Join(parts, " ")

		// search engines see dollar amounts; bounds are stored in euros
		if q.MaxPrice != nil {
			query += fmt.Sprintf(" under %d dollars", int(*q.MaxPrice/eurPerUSD))
		}
		if q.MinPrice != nil {
			query += fmt.Sprintf(" above %d dollars", int(*q.MinPrice/eurPerUSD))
		}
	}

	if q.DeliveryLocation != "" {
		query += " " + q.DeliveryLocation
	}
	if q.Condition != "" {
		query += " " + q.Condition
	}
	if q.Style != "" {
		query += " " + q.Style
	}
	return query
}
