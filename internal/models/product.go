package models

// Product is a single candidate returned by the product source. Link is the
// identity used for per-session deduplication: two products with the same
// link are the same product.
type Product struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
	Link        string `json:"link"`
	Platform    string `json:"platform,omitempty"`
	Image       string `json:"image,omitempty"`
}
