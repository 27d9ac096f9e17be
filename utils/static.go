package utils

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"orderwalk/internal/types"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// StaticPage walks a listing with plain HTTP requests, for sites whose order
// cards are present in the served HTML. Following the next-page link stands in
// for the click a browser would perform.
type StaticPage struct {
	collector    *colly.Collector
	logger       types.Logger
	nextSelector string
	current      string
	doc          *goquery.Document
}

// NewStaticPage creates a page positioned at startURL
func NewStaticPage(config *types.Config, startURL string, logger types.Logger) *StaticPage {
	collector := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(config.Timeout)
	collector.IgnoreRobotsTxt = true

	return &StaticPage{
		collector:    collector,
		logger:       logger,
		nextSelector: config.Selectors.NextPage,
		current:      startURL,
	}
}

// WithTransport replaces the collector's round tripper.
func (p *StaticPage) WithTransport(transport http.RoundTripper) *StaticPage {
	p.collector.WithTransport(transport)
	return p
}

// URL returns the page the walk is positioned at.
func (p *StaticPage) URL() string {
	return p.current
}

// Document fetches the current page. The result is reused until Next moves on.
func (p *StaticPage) Document(ctx context.Context) (*goquery.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		doc      *goquery.Document
		fetchErr error
	)
	c := p.collector.Clone()
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", acceptLanguage)
	})
	c.OnResponse(func(r *colly.Response) {
		parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			fetchErr = fmt.Errorf("failed to parse HTML: %w", err)
			return
		}
		parsed.Url = r.Request.URL
		doc = parsed
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("unexpected status code %d: %w", r.StatusCode, err)
			return
		}
		fetchErr = err
	})

	p.logger.Debugf("Fetching %s", p.current)
	visitErr := c.Visit(p.current)
	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", p.current, fetchErr)
	}
	if visitErr != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", p.current, visitErr)
	}
	if doc == nil {
		return nil, fmt.Errorf("failed to fetch %s: empty response", p.current)
	}

	p.doc = doc
	return doc, nil
}

// Next moves to the target of the next-page link. It reports false when the
// current document has no such link.
func (p *StaticPage) Next(ctx context.Context) (bool, error) {
	doc, err := p.Document(ctx)
	if err != nil {
		return false, err
	}

	link := doc.Find(p.nextSelector).First()
	href, ok := link.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return false, nil
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false, fmt.Errorf("invalid next page link %q: %w", href, err)
	}

	next := ref.String()
	if doc.Url != nil {
		next = doc.Url.ResolveReference(ref).String()
	}
	p.logger.Debugf("Following next page link to %s", next)
	p.current = next
	p.doc = nil
	return true, nil
}
