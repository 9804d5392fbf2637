// Package pricing ranks products by parsed price and reports the best deal.
package pricing

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/buybuddy-ai/buybuddy/internal/models"
)

var numberRe = regexp.MustCompile(`\d+\.?\d*`)

// ParsePrice extracts a numeric value from a free-text price string such as
// "$1,299.99" or "€40". Currency symbols and grouping commas are stripped and
// the first number found is used. Returns false when no number is present.
func ParsePrice(price string) (float64, bool) {
	if price == "" {
		return 0, false
	}
	cleaned := strings.NewReplacer("€", "", "$", "", "£", "", ",", "").Replace(price)
	m := numberRe.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type PriceRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type Comparison struct {
	BestDeal       *models.Product  `json:"best_deal"`
	Ranked         []models.Product `json:"price_comparison"`
	PriceRange     PriceRange       `json:"price_range"`
	Recommendation string           `json:"recommendation"`
	TotalCompared  int              `json:"total_compared"`
}

// Compare ranks products by ascending parsed price. Products whose price
// cannot be parsed are excluded from the ranking but the caller keeps them in
// the unranked result list. Ties keep the original provider order.
func Compare(products []models.Product) Comparison {
	if len(products) == 0 {
		return Comparison{
			Ranked:         []models.Product{},
			Recommendation: "No products to compare.",
		}
	}

	type priced struct {
		product models.Product
		value   float64
	}
	withPrices := make([]priced, 0, len(products))
	for _, p := range products {
		if v, ok := ParsePrice(p.Price); ok {
			withPrices = append(withPrices, priced{product: p, value: v})
		}
	}

	if len(withPrices) == 0 {
		return Comparison{
			Ranked:         products,
			Recommendation: "No prices available for comparison.",
		}
	}

	sort.SliceStable(withPrices, func(i, j int) bool {
		return withPrices[i].value < withPrices[j].value
	})

	best := withPrices[0].product
	minPrice := withPrices[0].value
	maxPrice := withPrices[len(withPrices)-1].value

	ranked := make([]models.Product, 0, len(withPrices))
	for _, item := range withPrices {
		ranked = append(ranked, item.product)
	}

	return Comparison{
		BestDeal:       &best,
		Ranked:         ranked,
		PriceRange:     PriceRange{Min: &minPrice, Max: &maxPrice},
		Recommendation: recommendation(best, minPrice, maxPrice, len(withPrices)),
		TotalCompared:  len(withPrices),
	}
}

func recommendation(best models.Product, minPrice, maxPrice float64, total int) string {
	platform := best.Platform
	if platform == "" {
		platform = "unknown platform"
	}

	parts := []string{fmt.Sprintf("Best price: %s on %s", best.Price, platform)}
	if best.Name != "" {
		parts = append(parts, "Product: "+best.Name)
	}

	if total > 1 {
		parts = append(parts, fmt.Sprintf("Compared %d products with prices from %.2f to %.2f", total, minPrice, maxPrice))

		diff := maxPrice - minPrice
		var diffPercent float64
		if minPrice > 0 {
			diffPercent = diff / minPrice * 100
		}
		if diffPercent > 10 {
			parts = append(parts, fmt.Sprintf("Price spread: %.2f (%.1f%% difference)", diff, diffPercent))
		}
	}

	return strings.Join(parts, " | ")
}
