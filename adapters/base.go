package adapters

import (
	"fmt"
	"net/url"
	"strings"

	"orderwalk/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// BaseAdapter provides the selector-chain helpers shared by listing adapters.
// Every lookup takes an ordered list of CSS selectors and resolves against the
// first one that yields a usable match, so a single adapter can read pages from
// several layout generations without detecting the layout up front.
type BaseAdapter struct {
	logger types.Logger
}

// NewBaseAdapter creates a new base adapter
func NewBaseAdapter(logger types.Logger) *BaseAdapter {
	return &BaseAdapter{logger: logger}
}

// ParseHTML parses HTML content into a goquery document anchored at pageURL,
// which is used to resolve relative links.
func (b *BaseAdapter) ParseHTML(html string, pageURL string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if pageURL != "" {
		parsed, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
		}
		doc.Url = parsed
	}
	return doc, nil
}

// FindFirst returns the matches of the first selector in chain that matches at
// least one node under scope, along with that selector.
func (b *BaseAdapter) FindFirst(scope *goquery.Selection, chain []string) (*goquery.Selection, string) {
	for _, selector := range chain {
		found := scope.Find(selector)
		if found.Length() > 0 {
			return found, selector
		}
	}
	return scope.Slice(0, 0), ""
}

// ExtractText returns the visible text of the first match of the first selector
// whose text is non-empty.
func (b *BaseAdapter) ExtractText(scope *goquery.Selection, chain []string) (string, error) {
	for _, selector := range chain {
		found := scope.Find(selector)
		if found.Length() == 0 {
			continue
		}
		if text := VisibleText(found.First()); text != "" {
			return text, nil
		}
	}
	return "", ErrElementNotFound
}

// ExtractAttribute returns attribute of the first match of the first selector
// carrying a non-empty value for it.
func (b *BaseAdapter) ExtractAttribute(scope *goquery.Selection, chain []string, attribute string) (string, error) {
	for _, selector := range chain {
		found := scope.Find(selector)
		if found.Length() == 0 {
			continue
		}
		value, exists := found.First().Attr(attribute)
		if exists && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), nil
		}
	}
	return "", ErrElementNotFound
}

// VisibleText returns the text content of s with runs of whitespace collapsed,
// approximating what a browser renders for the node.
func VisibleText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// ResolveURL makes href absolute against base. An unparsable href is returned as is.
func ResolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
