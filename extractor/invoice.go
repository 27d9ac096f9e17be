package extractor

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"orderwalk/internal/types"

	"golang.org/x/sync/errgroup"
)

// InvoiceMimeType is the type invoices are exported with.
const InvoiceMimeType = "text/html"

// InvoiceTransport retrieves one document. A non-nil error means no response
// was received at all.
type InvoiceTransport interface {
	Get(ctx context.Context, url string) (body []byte, status int, err error)
}

// InvoiceFilename names the invoice artifact of an order. The identifiers of a
// multi-item order are joined with "_".
func InvoiceFilename(productID string) string {
	return "INVOICE-" + strings.ReplaceAll(productID, types.MultiValueSeparator, "_")
}

// InvoiceFetcher downloads the invoice page of each order and exports it as is.
type InvoiceFetcher struct {
	transport InvoiceTransport
	exporter  types.Exporter
	logger    types.Logger
	metrics   *Metrics
	limit     int
}

// NewInvoiceFetcher creates a fetcher running at most config.MaxConcurrentRequests
// downloads at a time. metrics may be nil.
func NewInvoiceFetcher(config *types.Config, transport InvoiceTransport, exporter types.Exporter, logger types.Logger, metrics *Metrics) *InvoiceFetcher {
	limit := config.MaxConcurrentRequests
	if limit <= 0 {
		limit = 1
	}
	return &InvoiceFetcher{
		transport: transport,
		exporter:  exporter,
		logger:    logger,
		metrics:   metrics,
		limit:     limit,
	}
}

// FetchAndSave downloads the invoice of record and exports it. It makes a
// single attempt.
func (f *InvoiceFetcher) FetchAndSave(ctx context.Context, record types.OrderRecord) error {
	if record.ProductID == "" {
		return &InvoiceError{URL: record.InvoiceURL, Err: ErrNoProductID}
	}

	body, status, err := f.transport.Get(ctx, record.InvoiceURL)
	if err != nil {
		return &InvoiceError{URL: record.InvoiceURL, ProductID: record.ProductID, Err: err}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return &InvoiceError{URL: record.InvoiceURL, ProductID: record.ProductID, Err: fmt.Errorf("%w: %d", ErrUnexpectedStatus, status)}
	}

	filename := InvoiceFilename(record.ProductID)
	if err := f.exporter.Export(ctx, filename, InvoiceMimeType, body); err != nil {
		return &InvoiceError{URL: record.InvoiceURL, ProductID: record.ProductID, Err: fmt.Errorf("%w: %w", ErrInvoiceSave, err)}
	}
	return nil
}

// FetchAll fetches the invoices of every order and waits for all of them. The
// returned slice is aligned with orders and holds nil for each success.
func (f *InvoiceFetcher) FetchAll(ctx context.Context, orders []Order) []error {
	errs := make([]error, len(orders))

	var g errgroup.Group
	g.SetLimit(f.limit)
	for i, order := range orders {
		g.Go(func() error {
			err := f.FetchAndSave(ctx, order.Record)
			if err != nil {
				f.logger.Warnf("Failed to fetch invoice: %v", err)
				f.metrics.IncInvoice("failure")
				f.metrics.IncFailure(errorTypeLabel(err))
			} else {
				f.metrics.IncInvoice("success")
			}
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	return errs
}
