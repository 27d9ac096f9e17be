package types

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// MultiValueSeparator joins the per-item values of an order with several line items.
const MultiValueSeparator = " | "

// OrderRecord represents one parsed order from the order-history listing.
// Title and ProductLink always carry the same number of separator-joined segments.
// ProductID is empty when no product link matched the identifier pattern.
type OrderRecord struct {
	Title       string `json:"title"`
	ProductLink string `json:"productLink"`
	ProductID   string `json:"productId"`
	Total       string `json:"total"`
	DateOrdered string `json:"dateOrdered"`
	InvoiceURL  string `json:"invoiceUrl"`
}

// Header returns the CSV column names in field order.
func (o OrderRecord) Header() []string {
	return []string{"title", "productLink", "productId", "total", "dateOrdered", "invoiceUrl"}
}

// Values returns the field values in the same order as Header.
func (o OrderRecord) Values() []string {
	return []string{o.Title, o.ProductLink, o.ProductID, o.Total, o.DateOrdered, o.InvoiceURL}
}

// Segments returns the number of line items the record covers.
func (o OrderRecord) Segments() int {
	return len(strings.Split(o.Title, MultiValueSeparator))
}

// Config holds the configuration for a crawl
type Config struct {
	StartURL              string
	SettleDelay           time.Duration
	Timeout               time.Duration
	MaxConcurrentRequests int
	UseHeadlessBrowser    bool
	Headless              bool
	FetchInvoices         bool
	ConfirmStart          bool
	OutputDir             string
	StateURL              string
	StateNamespace        string
	UserAgent             string
	Selectors             Selectors
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		StartURL:              "https://www.amazon.com/gp/css/order-history",
		SettleDelay:           1200 * time.Millisecond,
		Timeout:               30 * time.Second,
		MaxConcurrentRequests: 5,
		UseHeadlessBrowser:    true,
		Headless:              true,
		FetchInvoices:         false,
		ConfirmStart:          true,
		OutputDir:             ".",
		StateURL:              "sqlite://orderwalk.db",
		StateNamespace:        "orderwalk",
		UserAgent:             "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Selectors:             DefaultSelectors(),
	}
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.StartURL != "" {
		parsed, err := url.Parse(c.StartURL)
		if err != nil {
			return fmt.Errorf("invalid start URL: %w", err)
		}
		if parsed.Host == "" {
			return fmt.Errorf("start URL must include a host")
		}
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("max concurrent requests must be positive")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.StateURL == "" {
		return fmt.Errorf("state URL cannot be empty")
	}
	if c.StateNamespace == "" {
		return fmt.Errorf("state namespace cannot be empty")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	return c.Selectors.Validate()
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Exporter persists a finished artifact under a suggested file name.
type Exporter interface {
	Export(ctx context.Context, filename, mimeType string, content []byte) error
}

// Confirmer asks the user a yes/no question and blocks until answered.
type Confirmer func(message string) bool
