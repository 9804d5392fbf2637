package pricing

import (
	"strings"
	"testing"

	"github.com/buybuddy-ai/buybuddy/internal/models"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,299.99", 1299.99, true},
		{"€40", 40, true},
		{"£15.50", 15.50, true},
		{"49.99 EUR", 49.99, true},
		{"from $20", 20, true},
		{"Contact for price", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParsePrice(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("ParsePrice(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCompare_RanksAscendingAcrossCurrencySymbols(t *testing.T) {
	products := []models.Product{
		{Name: "Mid", Price: "$50", Link: "l1", Platform: "Amazon"},
		{Name: "Cheap", Price: "€40", Link: "l2", Platform: "Fnac"},
		{Name: "Cheapest", Price: "30", Link: "l3", Platform: "eBay"},
	}

	cmp := Compare(products)

	if cmp.BestDeal == nil || cmp.BestDeal.Name != "Cheapest" {
		t.Fatalf("expected best deal Cheapest, got %+v", cmp.BestDeal)
	}
	if len(cmp.Ranked) != 3 {
		t.Fatalf("expected 3 ranked products, got %d", len(cmp.Ranked))
	}
	wantOrder := []string{"Cheapest", "Cheap", "Mid"}
	for i, name := range wantOrder {
		if cmp.Ranked[i].Name != name {
			t.Fatalf("ranked[%d] = %q, want %q", i, cmp.Ranked[i].Name, name)
		}
	}
	if cmp.PriceRange.Min == nil || *cmp.PriceRange.Min != 30 {
		t.Fatalf("unexpected min price: %v", cmp.PriceRange.Min)
	}
	if cmp.PriceRange.Max == nil || *cmp.PriceRange.Max != 50 {
		t.Fatalf("unexpected max price: %v", cmp.PriceRange.Max)
	}
	if cmp.TotalCompared != 3 {
		t.Fatalf("expected 3 compared, got %d", cmp.TotalCompared)
	}
}

func TestCompare_UnparseablePricesExcludedFromRanking(t *testing.T) {
	products := []models.Product{
		{Name: "No price", Price: "Contact for price", Link: "l1"},
		{Name: "Priced", Price: "$25", Link: "l2", Platform: "Amazon"},
	}

	cmp := Compare(products)

	if len(cmp.Ranked) != 1 || cmp.Ranked[0].Name != "Priced" {
		t.Fatalf("expected only the priced product in the ranking, got %+v", cmp.Ranked)
	}
	if cmp.TotalCompared != 1 {
		t.Fatalf("expected 1 compared, got %d", cmp.TotalCompared)
	}
	if cmp.BestDeal == nil || cmp.BestDeal.Name != "Priced" {
		t.Fatalf("unexpected best deal: %+v", cmp.BestDeal)
	}
}

func TestCompare_StableOrderOnTies(t *testing.T) {
	products := []models.Product{
		{Name: "First", Price: "$10", Link: "l1"},
		{Name: "Second", Price: "€10", Link: "l2"},
		{Name: "Third", Price: "10", Link: "l3"},
	}

	cmp := Compare(products)

	for i, name := range []string{"First", "Second", "Third"} {
		if cmp.Ranked[i].Name != name {
			t.Fatalf("tie order broken at %d: got %q, want %q", i, cmp.Ranked[i].Name, name)
		}
	}
}

func TestCompare_Empty(t *testing.T) {
	cmp := Compare(nil)
	if cmp.BestDeal != nil {
		t.Fatalf("expected no best deal, got %+v", cmp.BestDeal)
	}
	if len(cmp.Ranked) != 0 {
		t.Fatalf("expected empty ranking, got %d", len(cmp.Ranked))
	}
	if cmp.Recommendation != "No products to compare." {
		t.Fatalf("unexpected recommendation: %q", cmp.Recommendation)
	}
}

func TestCompare_NoParseablePrices(t *testing.T) {
	products := []models.Product{
		{Name: "A", Price: "Sold out", Link: "l1"},
		{Name: "B", Price: "Ask seller", Link: "l2"},
	}

	cmp := Compare(products)

	if cmp.BestDeal != nil {
		t.Fatalf("expected no best deal, got %+v", cmp.BestDeal)
	}
	if len(cmp.Ranked) != 2 {
		t.Fatalf("expected products kept in result, got %d", len(cmp.Ranked))
	}
	if cmp.Recommendation != "No prices available for comparison." {
		t.Fatalf("unexpected recommendation: %q", cmp.Recommendation)
	}
}

func TestCompare_SpreadNoteOnlyAboveTenPercent(t *testing.T) {
	wide := Compare([]models.Product{
		{Name: "A", Price: "$100", Link: "l1", Platform: "Amazon"},
		{Name: "B", Price: "$150", Link: "l2", Platform: "eBay"},
	})
	if !strings.Contains(wide.Recommendation, "Price spread:") {
		t.Fatalf("expected spread note in %q", wide.Recommendation)
	}

	narrow := Compare([]models.Product{
		{Name: "A", Price: "$100", Link: "l1", Platform: "Amazon"},
		{Name: "B", Price: "$105", Link: "l2", Platform: "eBay"},
	})
	if strings.Contains(narrow.Recommendation, "Price spread:") {
		t.Fatalf("did not expect spread note in %q", narrow.Recommendation)
	}
}
