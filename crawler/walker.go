// Package crawler drives a walk over a paginated order-history listing. Each
// page load is handled on its own; everything carried between pages lives in
// the durable crawl state.
package crawler

import (
	"context"
	"fmt"
	"time"

	"orderwalk/extractor"
	"orderwalk/internal/csvcodec"
	"orderwalk/internal/state"
	"orderwalk/internal/types"

	"github.com/PuerkitoBio/goquery"
)

const (
	// ExportFilename is the name the finished CSV is exported under.
	ExportFilename = "orders.csv"
	// ExportMimeType is the type the finished CSV is exported with.
	ExportMimeType = "text/csv"
)

// Page is the listing currently loaded in the host.
type Page interface {
	URL() string
	Document(ctx context.Context) (*goquery.Document, error)
	// Next activates the next-page control. false means the page has none.
	Next(ctx context.Context) (bool, error)
}

// Outcome is what a single page load led to.
type Outcome int

const (
	// OutcomeIdle means no walk was active and nothing was done.
	OutcomeIdle Outcome = iota
	// OutcomeDeclined means the user declined to start a walk.
	OutcomeDeclined
	// OutcomeAdvanced means the page was processed and the next page requested.
	OutcomeAdvanced
	// OutcomeFinished means the last page was processed and the walk ended.
	OutcomeFinished
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeDeclined:
		return "declined"
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeFinished:
		return "finished"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// PageReport summarises one processed page.
type PageReport struct {
	URL             string
	Records         int
	ParseFailures   int
	InvoiceFailures int
	AccumulatedRows int
	Duration        time.Duration
}

// Result is returned for every page load. Report is nil when no page was
// processed. Exported is only meaningful for OutcomeFinished.
type Result struct {
	Outcome  Outcome
	Report   *PageReport
	Exported bool
}

// Deps are the collaborators a Walker needs. Invoices and Metrics are optional.
type Deps struct {
	State    *state.Repository
	Exporter types.Exporter
	Confirm  types.Confirmer
	Invoices *extractor.InvoiceFetcher
	Metrics  *extractor.Metrics
	Logger   types.Logger
}

// Walker processes listing pages while a walk is active.
type Walker struct {
	config    *types.Config
	state     *state.Repository
	extractor *extractor.Extractor
	invoices  *extractor.InvoiceFetcher
	exporter  types.Exporter
	confirm   types.Confirmer
	metrics   *extractor.Metrics
	logger    types.Logger
}

// NewWalker creates a walker. Invoices are fetched only when config.FetchInvoices
// is set and deps carries a fetcher.
func NewWalker(config *types.Config, deps Deps) (*Walker, error) {
	if deps.State == nil {
		return nil, fmt.Errorf("walker needs a state repository")
	}
	if deps.Exporter == nil {
		return nil, fmt.Errorf("walker needs an exporter")
	}
	if deps.Confirm == nil {
		return nil, fmt.Errorf("walker needs a confirmer")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("walker needs a logger")
	}

	w := &Walker{
		config:    config,
		state:     deps.State,
		extractor: extractor.NewExtractor(config.Selectors, deps.Logger, deps.Metrics),
		exporter:  deps.Exporter,
		confirm:   deps.Confirm,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
	if config.FetchInvoices {
		w.invoices = deps.Invoices
		if w.invoices == nil {
			deps.Logger.Warn("Invoice fetching is enabled but no fetcher was provided")
		}
	}
	return w, nil
}

// Trigger starts a new walk on page, discarding any previous one.
func (w *Walker) Trigger(ctx context.Context, page Page) (Result, error) {
	if w.config.ConfirmStart && !w.confirm(fmt.Sprintf("Start downloading orders from %s?", page.URL())) {
		w.logger.Info("Walk declined")
		return Result{Outcome: OutcomeDeclined}, nil
	}

	if err := w.state.Begin(ctx); err != nil {
		return Result{}, fmt.Errorf("failed to start walk: %w", err)
	}
	w.logger.Infof("Starting walk at %s", page.URL())
	return w.process(ctx, page, state.CrawlState{Active: true})
}

// OnPageLoad handles a freshly loaded page. It does nothing unless a walk is active.
func (w *Walker) OnPageLoad(ctx context.Context, page Page) (Result, error) {
	st, err := w.state.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load crawl state: %w", err)
	}
	if !st.Active {
		return Result{Outcome: OutcomeIdle}, nil
	}
	return w.process(ctx, page, st)
}

// Active reports whether a walk is in progress.
func (w *Walker) Active(ctx context.Context) (bool, error) {
	st, err := w.state.Load(ctx)
	if err != nil {
		return false, err
	}
	return st.Active, nil
}

func (w *Walker) process(ctx context.Context, page Page, st state.CrawlState) (Result, error) {
	startTime := time.Now()

	if err := w.settle(ctx); err != nil {
		return Result{}, err
	}

	doc, err := page.Document(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read page %s: %w", page.URL(), err)
	}

	pageResult := w.extractor.ExtractPage(doc)
	report := &PageReport{
		URL:           page.URL(),
		Records:       len(pageResult.Orders),
		ParseFailures: len(pageResult.Failures),
	}
	st.FailedSnapshots = append(st.FailedSnapshots, pageResult.Snapshots()...)

	if w.invoices != nil && len(pageResult.Orders) > 0 {
		for i, err := range w.invoices.FetchAll(ctx, pageResult.Orders) {
			if err == nil {
				continue
			}
			report.InvoiceFailures++
			st.FailedSnapshots = append(st.FailedSnapshots, pageResult.Orders[i].Snapshot)
		}
	}

	st.AccumulatedCSV = csvcodec.Merge(st.AccumulatedCSV, csvcodec.Encode(pageResult.Records()))
	if err := w.state.SaveProgress(ctx, st); err != nil {
		return Result{}, fmt.Errorf("failed to save progress: %w", err)
	}

	report.AccumulatedRows = csvcodec.Rows(st.AccumulatedCSV)
	report.Duration = time.Since(startTime)
	w.metrics.ObservePage(report.Duration)
	w.logger.Infof("Processed %s: %d orders, %d failed cards, %d failed invoices, %d rows so far",
		report.URL, report.Records, report.ParseFailures, report.InvoiceFailures, report.AccumulatedRows)

	advanced, err := page.Next(ctx)
	if err != nil {
		return Result{Report: report}, fmt.Errorf("failed to advance from %s: %w", report.URL, err)
	}
	if advanced {
		return Result{Outcome: OutcomeAdvanced, Report: report}, nil
	}

	exported, err := w.finish(ctx, st)
	return Result{Outcome: OutcomeFinished, Report: report, Exported: exported}, err
}

// finish ends the walk on the last page and offers the export. When the export
// fails the walk is left inactive with its CSV and failed snapshots still
// stored; they are cleared only after a successful or declined export.
func (w *Walker) finish(ctx context.Context, st state.CrawlState) (bool, error) {
	if err := w.state.Deactivate(ctx); err != nil {
		return false, fmt.Errorf("failed to end walk: %w", err)
	}
	w.logger.Infof("Reached the last page with %d rows and %d failed snapshots",
		csvcodec.Rows(st.AccumulatedCSV), len(st.FailedSnapshots))

	exported := false
	if w.confirm("Would you like to download the orders?") {
		// a failed export keeps the data so it is not lost with the walk
		if err := w.exporter.Export(ctx, ExportFilename, ExportMimeType, []byte(st.AccumulatedCSV)); err != nil {
			return false, fmt.Errorf("failed to export %s: %w", ExportFilename, err)
		}
		exported = true
	} else {
		w.logger.Info("Export declined")
	}

	if err := w.state.Clear(ctx); err != nil {
		return exported, fmt.Errorf("failed to clear crawl state: %w", err)
	}
	return exported, nil
}

func (w *Walker) settle(ctx context.Context) error {
	if w.config.SettleDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(w.config.SettleDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
