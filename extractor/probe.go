package extractor

import (
	"github.com/PuerkitoBio/goquery"
)

// SelectorMatch counts the nodes one selector of a chain matches on a page.
type SelectorMatch struct {
	Field    string
	Selector string
	Matches  int
}

// ProbeReport shows how the selector profile fares against one page, to spot
// layout drift before a walk.
type ProbeReport struct {
	Cards    int
	Matches  []SelectorMatch
	Parsed   int
	Failed   int
	HasNext  bool
	Failures []Failure
}

// Probe counts matches for every selector of the profile and parses the page
// without recording anything.
func (e *Extractor) Probe(doc *goquery.Document) ProbeReport {
	selectors := e.adapter.Selectors()
	cards := e.adapter.OrderCards(doc)

	report := ProbeReport{
		Cards:   cards.Length(),
		HasNext: doc.Find(selectors.NextPage).Length() > 0,
	}
	report.Matches = append(report.Matches, SelectorMatch{Field: "order_card", Selector: selectors.OrderCard, Matches: cards.Length()})
	chains := []struct {
		field string
		chain []string
	}{
		{"title_link", selectors.TitleLink},
		{"total", selectors.Total},
		{"date", selectors.Date},
		{"invoice_url", selectors.InvoiceURL},
	}
	for _, c := range chains {
		for _, selector := range c.chain {
			report.Matches = append(report.Matches, SelectorMatch{Field: c.field, Selector: selector, Matches: cards.Find(selector).Length()})
		}
	}
	report.Matches = append(report.Matches, SelectorMatch{Field: "next_page", Selector: selectors.NextPage, Matches: doc.Find(selectors.NextPage).Length()})

	probe := &Extractor{adapter: e.adapter, logger: e.logger}
	result := probe.ExtractPage(doc)
	report.Parsed = len(result.Orders)
	report.Failed = len(result.Failures)
	report.Failures = result.Failures
	return report
}
