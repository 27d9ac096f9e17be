package extractor

import (
	"errors"
	"fmt"

	"orderwalk/adapters"
)

var (
	// ErrUnexpectedStatus indicates the invoice request got a non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrNoProductID indicates the order has no identifier to name its invoice by.
	ErrNoProductID = errors.New("order has no product identifier")
	// ErrInvoiceSave indicates the invoice was fetched but could not be exported.
	ErrInvoiceSave = errors.New("failed to save invoice")
)

// InvoiceError describes a failed invoice fetch for one order.
type InvoiceError struct {
	URL       string
	ProductID string
	Err       error
}

func (e *InvoiceError) Error() string {
	return fmt.Sprintf("invoice %s (%s): %v", e.ProductID, e.URL, e.Err)
}

func (e *InvoiceError) Unwrap() error {
	return e.Err
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var parseErr *adapters.ParseError
	if errors.As(err, &parseErr) {
		return "parse"
	}
	switch {
	case errors.Is(err, ErrNoProductID):
		return "invoice_no_id"
	case errors.Is(err, ErrUnexpectedStatus):
		return "invoice_status"
	case errors.Is(err, ErrInvoiceSave):
		return "invoice_save"
	}
	var invoiceErr *InvoiceError
	if errors.As(err, &invoiceErr) {
		return "invoice_transport"
	}
	return "other"
}
