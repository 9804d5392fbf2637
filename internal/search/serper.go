// Package search queries the SerperDev API for candidate products.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/buybuddy-ai/buybuddy/internal/models"
)

// countryCodes maps lowercase country names to the ISO codes SerperDev
// expects in its gl parameter.
var countryCodes = map[string]string{
	"canada":         "ca",
	"france":         "fr",
	"usa":            "us",
	"united states":  "us",
	"uk":             "gb",
	"united kingdom": "gb",
	"australia":      "au",
	"germany":        "de",
	"spain":          "es",
	"italy":          "it",
	"japan":          "jp",
	"china":          "cn",
	"india":          "in",
	"brazil":         "br",
	"mexico":         "mx",
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://google.serper.dev"
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type serperReq struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
}

type serperItem struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Snippet  string `json:"snippet"`
	Link     string `json:"link"`
	Source   string `json:"source"`
	ImageURL string `json:"imageUrl"`
}

type serperResp struct {
	Shopping []serperItem `json:"shopping"`
	Organic  []serperItem `json:"organic"`
}

// Search returns up to count products for the query. The shopping endpoint is
// tried first (its results carry prices); a regular search backfills when it
// returns too few. location is a lowercase country name used for geographic
// targeting.
func (c *Client) Search(ctx context.Context, query, location string, count int) ([]models.Product, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("serper: api key is required")
	}
	if count <= 0 {
		count = 10
	}

	gl := countryCode(location)
	products := make([]models.Product, 0, count)

	shopping, err := c.post(ctx, "/shopping", serperReq{Q: query, Num: count, GL: gl, HL: "en"})
	if err == nil {
		for _, item := range shopping.Shopping {
			products = append(products, itemToProduct(item, true))
		}
	}
	// shopping endpoint failures fall through to the regular search

	if len(products) < count {
		general, err := c.post(ctx, "/search", serperReq{
			Q:   query + " shopping buy",
			Num: count - len(products),
			GL:  gl,
			HL:  "en",
		})
		if err != nil {
			if len(products) == 0 {
				return nil, fmt.Errorf("serper search: %w", err)
			}
			return products[:min(count, len(products))], nil
		}

		for _, item := range general.Shopping {
			if containsProduct(products, item) {
				continue
			}
			products = append(products, itemToProduct(item, true))
		}
		for _, item := range general.Organic {
			if len(products) >= count {
				break
			}
			if containsProduct(products, item) {
				continue
			}
			products = append(products, itemToProduct(item, false))
		}
	}

	if len(products) > count {
		products = products[:count]
	}
	return products, nil
}

func (c *Client) post(ctx context.Context, path string, body serperReq) (*serperResp, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("serper: status %d", resp.StatusCode)
	}

	var decoded serperResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	return &decoded, nil
}

func itemToProduct(item serperItem, withPrice bool) models.Product {
	platform := item.Source
	if platform == "" {
		platform = extractPlatform(item.Link)
	}
	p := models.Product{
		Name:        item.Title,
		Description: item.Snippet,
		Link:        item.Link,
		Platform:    platform,
		Image:       item.ImageURL,
	}
	if withPrice {
		p.Price = item.Price
	}
	return p
}

func containsProduct(products []models.Product, item serperItem) bool {
	for _, p := range products {
		if p.Link == item.Link || (item.Title != "" && p.Name == item.Title) {
			return true
		}
	}
	return false
}

func countryCode(location string) string {
	if location == "" {
		return "us"
	}
	loc := strings.ToLower(strings.TrimSpace(location))

	if code, ok := countryCodes[loc]; ok {
		return code
	}
	for country, code := range countryCodes {
		if strings.Contains(loc, country) || strings.Contains(country, loc) {
			return code
		}
	}
	return "us"
}

var knownPlatforms = map[string]string{
	"amazon":  "Amazon",
	"ebay":    "eBay",
	"walmart": "Walmart",
	"bestbuy": "Best Buy",
	"target":  "Target",
	"newegg":  "Newegg",
}

func extractPlatform(link string) string {
	if link == "" {
		return "Unknown"
	}
	lower := strings.ToLower(link)
	for key, name := range knownPlatforms {
		if strings.Contains(lower, key) {
			return name
		}
	}

	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return "Unknown"
	}
	domain := strings.TrimPrefix(u.Host, "www.")
	if i := strings.Index(domain, "."); i > 0 {
		domain = domain[:i]
	}
	if domain == "" {
		return "Unknown"
	}
	return strings.ToUpper(domain[:1]) + domain[1:]
}
