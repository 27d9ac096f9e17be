package extractor

import (
	"errors"
	"io"
	"strings"
	"testing"

	"orderwalk/adapters"
	"orderwalk/internal/types"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodCard = `
<div class="order-card">
  <div class="order-info">
    <div class="a-column a-span3"><span class="value">March 3, 2024</span></div>
    <div class="order-total"><span class="value">$12.99</span></div>
  </div>
  <a href="/gp/product/B000123/ref=asin_title">Gift, wrapped</a>
  <div class="order-level-connections"><a href="/invoice?id=1">Invoice</a></div>
</div>`

const brokenCard = `
<div class="order-card">
  <a href="/gp/product/B000999/ref=asin_title">Orphan   item</a>
  <span>no total here</span>
</div>`

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func parseListing(t *testing.T, cards ...string) *goquery.Document {
	t.Helper()
	html := "<html><body>" + strings.Join(cards, "\n") + "</body></html>"
	doc, err := adapters.NewBaseAdapter(newTestLogger()).ParseHTML(html, "https://shop.test/gp/css/order-history")
	require.NoError(t, err)
	return doc
}

func TestNewExtractor(t *testing.T) {
	logger := newTestLogger()
	metrics := NewMetrics()

	extractor := NewExtractor(types.DefaultSelectors(), logger, metrics)

	assert.NotNil(t, extractor)
	assert.Equal(t, logger, extractor.logger)
	assert.Equal(t, metrics, extractor.metrics)
	assert.Equal(t, types.DefaultSelectors(), extractor.Adapter().Selectors())
}

func TestExtractPage_PartitionsFailures(t *testing.T) {
	metrics := NewMetrics()
	extractor := NewExtractor(types.DefaultSelectors(), newTestLogger(), metrics)
	doc := parseListing(t, goodCard, brokenCard)

	result := extractor.ExtractPage(doc)

	require.Len(t, result.Orders, 1)
	require.Len(t, result.Failures, 1)

	record := result.Orders[0].Record
	assert.Equal(t, "Gift, wrapped", record.Title)
	assert.Equal(t, "https://shop.test/gp/product/B000123/ref=asin_title", record.ProductLink)
	assert.Equal(t, "B000123", record.ProductID)
	assert.Equal(t, "https://shop.test/invoice?id=1", record.InvoiceURL)

	assert.Equal(t, []string{"Orphan item no total here"}, result.Snapshots())
	var parseErr *adapters.ParseError
	require.True(t, errors.As(result.Failures[0].Err, &parseErr))
	assert.Equal(t, "total", parseErr.Field)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OrdersExtracted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FailuresTotal.WithLabelValues("parse")))
}

func TestExtractPage_KeepsDocumentOrder(t *testing.T) {
	second := strings.Replace(goodCard, "Gift, wrapped", "Lamp", 1)
	third := strings.Replace(goodCard, "Gift, wrapped", "Kettle", 1)
	extractor := NewExtractor(types.DefaultSelectors(), newTestLogger(), nil)

	result := extractor.ExtractPage(parseListing(t, goodCard, brokenCard, second, third))

	records := result.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "Gift, wrapped", records[0].Title)
	assert.Equal(t, "Lamp", records[1].Title)
	assert.Equal(t, "Kettle", records[2].Title)
}

func TestExtractPage_NoCards(t *testing.T) {
	extractor := NewExtractor(types.DefaultSelectors(), newTestLogger(), nil)

	result := extractor.ExtractPage(parseListing(t, "<p>You have not placed any orders.</p>"))

	assert.Empty(t, result.Orders)
	assert.Empty(t, result.Failures)
	assert.Empty(t, result.Records())
}

func TestErrorTypeLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "unknown"},
		{"parse", &adapters.ParseError{Field: "total", Err: adapters.ErrElementNotFound}, "parse"},
		{"no id", &InvoiceError{Err: ErrNoProductID}, "invoice_no_id"},
		{"status", &InvoiceError{Err: ErrUnexpectedStatus}, "invoice_status"},
		{"save", &InvoiceError{Err: ErrInvoiceSave}, "invoice_save"},
		{"transport", &InvoiceError{Err: errors.New("connection reset")}, "invoice_transport"},
		{"other", errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorTypeLabel(tt.err))
		})
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var metrics *Metrics

	assert.NotPanics(t, func() {
		metrics.ObservePage(0)
		metrics.AddOrders(3)
		metrics.IncFailure("parse")
		metrics.IncInvoice("success")
	})
}

func TestProbe(t *testing.T) {
	metrics := NewMetrics()
	extractor := NewExtractor(types.DefaultSelectors(), newTestLogger(), metrics)
	doc := parseListing(t, goodCard, brokenCard, `<ul class="a-pagination"><li class="a-last"><a href="?page=2">Next</a></li></ul>`)

	report := extractor.Probe(doc)

	assert.Equal(t, 2, report.Cards)
	assert.Equal(t, 1, report.Parsed)
	assert.Equal(t, 1, report.Failed)
	assert.True(t, report.HasNext)

	counts := map[string]int{}
	for _, m := range report.Matches {
		counts[m.Field+" "+m.Selector] = m.Matches
	}
	assert.Equal(t, 2, counts["title_link a[href*='asin_title']"])
	assert.Equal(t, 1, counts["total [class*=order-total] .value"])
	assert.Equal(t, 1, counts["next_page .a-pagination .a-last a"])

	// probing leaves the walk metrics untouched
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.OrdersExtracted))
}
