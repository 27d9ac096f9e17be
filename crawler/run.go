package crawler

import (
	"context"
	"fmt"
)

// Summary collects the results of a whole run.
type Summary struct {
	Outcome  Outcome
	Exported bool
	Pages    []PageReport
}

// Rows returns the accumulated row count after the last processed page.
func (s Summary) Rows() int {
	if len(s.Pages) == 0 {
		return 0
	}
	return s.Pages[len(s.Pages)-1].AccumulatedRows
}

// Run plays the host: it starts a walk on page (or, with resume, continues an
// active one) and hands every page reached by Next back to the walker until the
// walk ends.
func Run(ctx context.Context, walker *Walker, page Page, resume bool) (Summary, error) {
	var summary Summary

	var (
		result Result
		err    error
	)
	if resume {
		result, err = walker.OnPageLoad(ctx, page)
		if err == nil && result.Outcome == OutcomeIdle {
			walker.logger.Info("No active walk to resume, starting a new one")
			result, err = walker.Trigger(ctx, page)
		}
	} else {
		active, activeErr := walker.Active(ctx)
		if activeErr != nil {
			return summary, fmt.Errorf("failed to load crawl state: %w", activeErr)
		}
		if active {
			walker.logger.Warn("Discarding the active walk and starting over")
		}
		result, err = walker.Trigger(ctx, page)
	}

	for {
		if result.Report != nil {
			summary.Pages = append(summary.Pages, *result.Report)
		}
		summary.Outcome = result.Outcome
		summary.Exported = result.Exported
		if err != nil || result.Outcome != OutcomeAdvanced {
			return summary, err
		}
		result, err = walker.OnPageLoad(ctx, page)
	}
}
