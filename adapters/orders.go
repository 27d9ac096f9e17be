package adapters

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"orderwalk/internal/types"

	"github.com/PuerkitoBio/goquery"
)

var productIDPattern = regexp.MustCompile(`/gp/product/([^/?#]+)/ref=`)

// ProductID extracts the product identifier from a product link of the form
// .../gp/product/<ID>/ref=...
func ProductID(link string) (string, bool) {
	match := productIDPattern.FindStringSubmatch(link)
	if len(match) < 2 {
		return "", false
	}
	return match[1], true
}

// OrderAdapter reads order cards from an order-history listing.
type OrderAdapter struct {
	*BaseAdapter
	selectors types.Selectors
}

// NewOrderAdapter creates an adapter for the given selector profile
func NewOrderAdapter(selectors types.Selectors, logger types.Logger) *OrderAdapter {
	return &OrderAdapter{
		BaseAdapter: NewBaseAdapter(logger),
		selectors:   selectors,
	}
}

// Selectors returns the active selector profile.
func (a *OrderAdapter) Selectors() types.Selectors {
	return a.selectors
}

// OrderCards returns every order card on the page in document order.
func (a *OrderAdapter) OrderCards(doc *goquery.Document) *goquery.Selection {
	return doc.Find(a.selectors.OrderCard)
}

// Extract turns one order card into a record. base resolves relative links and
// may be nil. Any failure, including a panic while walking the card, comes back
// as a *ParseError and leaves the record zero.
func (a *OrderAdapter) Extract(card *goquery.Selection, base *url.URL) (record types.OrderRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			record = types.OrderRecord{}
			err = &ParseError{Field: "card", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	titles, links, err := a.extractTitleLinks(card, base)
	if err != nil {
		return types.OrderRecord{}, err
	}
	record.Title = strings.Join(titles, types.MultiValueSeparator)
	record.ProductLink = strings.Join(links, types.MultiValueSeparator)
	record.ProductID = a.productIDs(links)

	record.Total, err = a.ExtractText(card, a.selectors.Total)
	if err != nil {
		return types.OrderRecord{}, &ParseError{Field: "total", Selectors: a.selectors.Total, Err: err}
	}

	record.DateOrdered, err = a.ExtractText(card, a.selectors.Date)
	if err != nil {
		return types.OrderRecord{}, &ParseError{Field: "dateOrdered", Selectors: a.selectors.Date, Err: err}
	}

	invoice, err := a.ExtractAttribute(card, a.selectors.InvoiceURL, "href")
	if err != nil {
		return types.OrderRecord{}, &ParseError{Field: "invoiceUrl", Selectors: a.selectors.InvoiceURL, Err: err}
	}
	record.InvoiceURL = ResolveURL(base, invoice)

	return record, nil
}

// extractTitleLinks returns the parallel title and link lists of the card's line items.
func (a *OrderAdapter) extractTitleLinks(card *goquery.Selection, base *url.URL) ([]string, []string, error) {
	found, selector := a.FindFirst(card, a.selectors.TitleLink)
	if found.Length() == 0 {
		return nil, nil, &ParseError{Field: "title", Selectors: a.selectors.TitleLink, Err: ErrElementNotFound}
	}

	// Thumbnail links share the title pattern on the newer layout.
	if found.Length() > 1 {
		found = found.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return !isImageDecoration(s.Children().First())
		})
	}
	if found.Length() == 0 {
		return nil, nil, &ParseError{Field: "title", Selectors: []string{selector}, Err: fmt.Errorf("only image links matched: %w", ErrElementNotFound)}
	}

	titles := make([]string, 0, found.Length())
	links := make([]string, 0, found.Length())
	var missing error
	found.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, exists := s.Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			missing = &ParseError{Field: "productLink", Selectors: []string{selector}, Err: ErrElementNotFound}
			return false
		}
		title := VisibleText(s)
		if title == "" {
			missing = &ParseError{Field: "title", Selectors: []string{selector}, Err: fmt.Errorf("empty link text: %w", ErrElementNotFound)}
			return false
		}
		titles = append(titles, segment(title))
		links = append(links, segment(ResolveURL(base, href)))
		return true
	})
	if missing != nil {
		return nil, nil, missing
	}
	return titles, links, nil
}

// segment keeps one line-item value from splitting into several segments once
// joined with the others.
func segment(value string) string {
	return strings.ReplaceAll(value, types.MultiValueSeparator, " / ")
}

// productIDs joins the identifiers of the links that match the product pattern.
func (a *OrderAdapter) productIDs(links []string) string {
	ids := make([]string, 0, len(links))
	for _, link := range links {
		id, ok := ProductID(link)
		if !ok {
			a.logger.Debugf("No product identifier in link %s", link)
			continue
		}
		ids = append(ids, id)
	}
	return strings.Join(ids, types.MultiValueSeparator)
}

// isImageDecoration reports whether s is an image, or a wrapper holding only images.
func isImageDecoration(s *goquery.Selection) bool {
	if s.Length() == 0 {
		return false
	}
	if goquery.NodeName(s) == "img" {
		return true
	}
	return s.Find("img").Length() > 0 && VisibleText(s) == ""
}
