// Package extractor turns a listing snapshot into order records and, when
// enabled, saves each order's invoice page.
package extractor

import (
	"time"

	"orderwalk/adapters"
	"orderwalk/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// Order is a parsed record together with the visible text of the card it came
// from, which stands in for the card if a later stage fails.
type Order struct {
	Record   types.OrderRecord
	Snapshot string
}

// Failure is an order card that could not be parsed.
type Failure struct {
	Snapshot string
	Err      error
}

// PageResult partitions the cards of one page into parsed orders and failures,
// both in document order.
type PageResult struct {
	Orders   []Order
	Failures []Failure
}

// Records returns the parsed records in document order.
func (r PageResult) Records() []types.OrderRecord {
	records := make([]types.OrderRecord, len(r.Orders))
	for i, order := range r.Orders {
		records[i] = order.Record
	}
	return records
}

// Snapshots returns the snapshot of every failed card.
func (r PageResult) Snapshots() []string {
	snapshots := make([]string, len(r.Failures))
	for i, failure := range r.Failures {
		snapshots[i] = failure.Snapshot
	}
	return snapshots
}

// Extractor runs the order adapter over every card of a page.
type Extractor struct {
	adapter *adapters.OrderAdapter
	logger  types.Logger
	metrics *Metrics
}

// NewExtractor creates an extractor for the given selector profile. metrics may be nil.
func NewExtractor(selectors types.Selectors, logger types.Logger, metrics *Metrics) *Extractor {
	return &Extractor{
		adapter: adapters.NewOrderAdapter(selectors, logger),
		logger:  logger,
		metrics: metrics,
	}
}

// Adapter returns the underlying order adapter.
func (e *Extractor) Adapter() *adapters.OrderAdapter {
	return e.adapter
}

// ExtractPage parses every order card in doc. A card that fails never stops
// its siblings from being read.
func (e *Extractor) ExtractPage(doc *goquery.Document) PageResult {
	startTime := time.Now()
	var result PageResult

	e.adapter.OrderCards(doc).Each(func(i int, card *goquery.Selection) {
		snapshot := adapters.VisibleText(card)
		record, err := e.adapter.Extract(card, doc.Url)
		if err != nil {
			e.logger.Warnf("Failed to parse order card %d: %v (%q)", i, err, snapshot)
			e.metrics.IncFailure(errorTypeLabel(err))
			result.Failures = append(result.Failures, Failure{Snapshot: snapshot, Err: err})
			return
		}
		result.Orders = append(result.Orders, Order{Record: record, Snapshot: snapshot})
	})

	e.metrics.AddOrders(len(result.Orders))
	e.logger.Debugf("Extracted %d orders, %d failed cards in %v", len(result.Orders), len(result.Failures), time.Since(startTime))
	return result
}
