package utils

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"orderwalk/internal/types"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// BrowserClient owns one Chrome instance shared by every page it opens, so the
// user's session cookies survive navigation between listing pages.
type BrowserClient struct {
	config      *types.Config
	logger      types.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// NewBrowserClient starts a browser allocator. Chrome itself is launched on the
// first action.
func NewBrowserClient(config *types.Config, logger types.Logger) *BrowserClient {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", config.Headless),
		chromedp.UserAgent(config.UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	// chromedp is chatty at every level; route it to debug
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Debugf),
		chromedp.WithErrorf(logger.Debugf),
	)

	return &BrowserClient{
		config:      config,
		logger:      logger,
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}
}

// run executes actions in the browser, bounded by the configured timeout and
// by ctx.
func (b *BrowserClient) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(b.ctx, b.config.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Open navigates to pageURL and returns the live page.
func (b *BrowserClient) Open(ctx context.Context, pageURL string) (*BrowserPage, error) {
	err := b.run(ctx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": acceptLanguage}),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", pageURL, err)
	}
	b.logger.Debugf("Opened %s in browser", pageURL)
	return &BrowserPage{
		client:       b,
		location:     pageURL,
		nextSelector: b.config.Selectors.NextPage,
	}, nil
}

// Close shuts the browser down
func (b *BrowserClient) Close() {
	b.cancel()
	b.allocCancel()
}

// BrowserPage is the tab currently showing the order listing.
type BrowserPage struct {
	client       *BrowserClient
	location     string
	nextSelector string
}

// URL returns the location seen at the last snapshot.
func (p *BrowserPage) URL() string {
	return p.location
}

// Document snapshots the rendered DOM.
func (p *BrowserPage) Document(ctx context.Context) (*goquery.Document, error) {
	var html, location string
	err := p.client.run(ctx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get page content: %w", err)
	}
	p.location = location

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if parsed, err := url.Parse(location); err == nil {
		doc.Url = parsed
	}

	p.client.logger.Debugf("Snapshot of %s (%d bytes)", location, len(html))
	return doc, nil
}

// Next clicks the next-page control. It reports false, without error, when the
// page has none.
func (p *BrowserPage) Next(ctx context.Context) (bool, error) {
	var present bool
	script := fmt.Sprintf("document.querySelector(%q) !== null", p.nextSelector)
	if err := p.client.run(ctx, chromedp.Evaluate(script, &present)); err != nil {
		return false, fmt.Errorf("failed to look up next page control: %w", err)
	}
	if !present {
		return false, nil
	}

	before := p.location
	err := p.client.run(ctx,
		chromedp.Click(p.nextSelector, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&p.location),
	)
	if err != nil {
		return false, fmt.Errorf("failed to activate next page control: %w", err)
	}
	p.client.logger.Debugf("Navigated from %s to %s", before, p.location)
	return true, nil
}
