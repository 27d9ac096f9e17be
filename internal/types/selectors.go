package types

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Selectors is the selector profile used to read the order-history listing.
// Chained fields are tried in order and the first one that matches wins, so the
// older page layout is listed first and the newer layout after it.
type Selectors struct {
	OrderCard  string   `yaml:"order_card"`
	TitleLink  []string `yaml:"title_link"`
	Total      []string `yaml:"total"`
	Date       []string `yaml:"date"`
	InvoiceURL []string `yaml:"invoice_url"`
	NextPage   string   `yaml:"next_page"`
}

// DefaultSelectors returns the profile for both known listing layouts.
func DefaultSelectors() Selectors {
	return Selectors{
		OrderCard: "[class*=order-card]",
		TitleLink: []string{
			"a[href*='asin_title']",
			".yohtmlc-product-title a, a.a-link-normal[href*='/gp/product/']",
		},
		Total: []string{
			"[class*=order-total] .value",
			".yohtmlc-order-total .value, .order-header [class*=total] .a-size-base",
		},
		Date: []string{
			".order-info .a-column.a-span3 .value",
			".order-header__header-list-item .a-size-base, .order-header .a-span3 .a-size-base",
		},
		InvoiceURL: []string{
			"[class*='order-level-connections'] a:last-child",
		},
		NextPage: ".a-pagination .a-last a",
	}
}

// Validate reports a profile that cannot drive extraction.
func (s Selectors) Validate() error {
	if s.OrderCard == "" {
		return fmt.Errorf("order card selector cannot be empty")
	}
	if s.NextPage == "" {
		return fmt.Errorf("next page selector cannot be empty")
	}
	chains := map[string][]string{
		"title_link":  s.TitleLink,
		"total":       s.Total,
		"date":        s.Date,
		"invoice_url": s.InvoiceURL,
	}
	for name, chain := range chains {
		if len(chain) == 0 {
			return fmt.Errorf("selector chain %s cannot be empty", name)
		}
		for _, sel := range chain {
			if sel == "" {
				return fmt.Errorf("selector chain %s contains an empty selector", name)
			}
		}
	}
	return nil
}

// LoadSelectors reads a YAML profile from path. Keys missing from the file keep
// their default value.
func LoadSelectors(path string) (Selectors, error) {
	selectors := DefaultSelectors()

	data, err := os.ReadFile(path)
	if err != nil {
		return selectors, fmt.Errorf("failed to read selectors file: %w", err)
	}
	if err := yaml.Unmarshal(data, &selectors); err != nil {
		return selectors, fmt.Errorf("failed to parse selectors file: %w", err)
	}
	if err := selectors.Validate(); err != nil {
		return selectors, fmt.Errorf("invalid selectors file %s: %w", path, err)
	}
	return selectors, nil
}
