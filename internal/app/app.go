// Package app wires the configured components into a ready walker for the
// command line and the HTTP service.
package app

import (
	"context"
	"fmt"
	"sync"

	"orderwalk/crawler"
	"orderwalk/extractor"
	"orderwalk/internal/state"
	"orderwalk/internal/types"
	"orderwalk/utils"
)

// App holds the long-lived components of one process.
type App struct {
	Config  *types.Config
	Logger  types.Logger
	Store   state.Store
	State   *state.Repository
	Metrics *extractor.Metrics
	Walker  *crawler.Walker

	exporter types.Exporter

	mu      sync.Mutex
	http    *utils.HTTPClient
	browser *utils.BrowserClient
}

// New opens the state store and builds the walker. confirm answers both walk
// prompts.
func New(ctx context.Context, config *types.Config, logger types.Logger, confirm types.Confirmer) (*App, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := state.Open(ctx, config.StateURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	a := &App{
		Config:   config,
		Logger:   logger,
		Store:    store,
		State:    state.NewRepository(store, config.StateNamespace),
		Metrics:  extractor.NewMetrics(),
		exporter: utils.NewFileExporter(config.OutputDir, logger),
	}

	a.Walker, err = a.NewWalker(confirm, config.FetchInvoices)
	if err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

// NewWalker builds another walker over the same state, exporter and metrics,
// with its own confirm policy and invoice setting.
func (a *App) NewWalker(confirm types.Confirmer, invoices bool) (*crawler.Walker, error) {
	config := *a.Config
	config.FetchInvoices = invoices

	deps := crawler.Deps{
		State:    a.State,
		Exporter: a.exporter,
		Confirm:  confirm,
		Metrics:  a.Metrics,
		Logger:   a.Logger,
	}
	if invoices {
		deps.Invoices = extractor.NewInvoiceFetcher(&config, a.httpClient(), a.exporter, a.Logger, a.Metrics)
	}
	return crawler.NewWalker(&config, deps)
}

func (a *App) httpClient() *utils.HTTPClient {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.http == nil {
		a.http = utils.NewHTTPClient(a.Config, a.Logger)
	}
	return a.http
}

// OpenPage positions a page source at startURL: a browser tab, or plain HTTP
// when the headless browser is disabled.
func (a *App) OpenPage(ctx context.Context, startURL string) (crawler.Page, error) {
	if !a.Config.UseHeadlessBrowser {
		return utils.NewStaticPage(a.Config, startURL, a.Logger), nil
	}

	a.mu.Lock()
	if a.browser == nil {
		a.browser = utils.NewBrowserClient(a.Config, a.Logger)
	}
	browser := a.browser
	a.mu.Unlock()

	page, err := browser.Open(ctx, startURL)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Close releases the browser, the HTTP client and the state store
func (a *App) Close() {
	a.mu.Lock()
	if a.browser != nil {
		a.browser.Close()
		a.browser = nil
	}
	if a.http != nil {
		a.http.Close()
		a.http = nil
	}
	a.mu.Unlock()
	if err := a.Store.Close(); err != nil {
		a.Logger.Warnf("Failed to close state store: %v", err)
	}
}
