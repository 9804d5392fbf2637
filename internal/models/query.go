package models

// StructuredQuery is the normalized shopping intent extracted from a user
// message. Prices are in euros (dollar amounts are converted during
// extraction). QueryText is never empty; extraction falls back to the raw
// user message.
type StructuredQuery struct {
	ProductType      string   `json:"product_type"`
	Category         string   `json:"category,omitempty"`
	MaxPrice         *float64 `json:"max_price,omitempty"`
	MinPrice         *float64 `json:"min_price,omitempty"`
	Brand            string   `json:"brand,omitempty"`
	Features         []string `json:"features,omitempty"`
	QueryText        string   `json:"query_text"`
	Location         string   `json:"location,omitempty"`
	DeliveryLocation string   `json:"delivery_location,omitempty"`
	Condition        string   `json:"condition,omitempty"`
	Style            string   `json:"style,omitempty"`
}
