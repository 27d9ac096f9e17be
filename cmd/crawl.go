package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"orderwalk/crawler"
	"orderwalk/internal/app"
	"orderwalk/internal/types"
	"orderwalk/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var crawlFlags struct {
	url         string
	resume      bool
	invoices    bool
	yes         bool
	httpOnly    bool
	headed      bool
	output      string
	selectors   string
	settle      time.Duration
	timeout     time.Duration
	concurrency int
	metricsAddr string
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [--url <listing>] [--resume] [--invoices]",
	Short: "Walks the listing from its first page and exports orders.csv at the end.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		config, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyCrawlFlags(cmd, config); err != nil {
			return err
		}

		confirm := utils.PromptConfirmer(os.Stdin, os.Stderr)
		if crawlFlags.yes {
			confirm = utils.AlwaysConfirm
		}

		a, err := app.New(cmd.Context(), config, logger, confirm)
		if err != nil {
			return err
		}
		defer a.Close()

		if crawlFlags.metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(a.Metrics.Registry, promhttp.HandlerOpts{}))
			server := &http.Server{Addr: crawlFlags.metricsAddr, Handler: mux}
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Warnf("Metrics server stopped: %v", err)
				}
			}()
			defer server.Close()
			logger.Infof("Serving metrics on %s/metrics", crawlFlags.metricsAddr)
		}

		page, err := a.OpenPage(cmd.Context(), config.StartURL)
		if err != nil {
			return err
		}

		startTime := time.Now()
		summary, err := crawler.Run(cmd.Context(), a.Walker, page, crawlFlags.resume)
		if err != nil {
			logger.Errorf("Walk stopped after %d pages: %v", len(summary.Pages), err)
			return err
		}

		logger.Infof("Walk %s in %v", summary.Outcome, time.Since(startTime))
		logger.Infof("Total pages processed: %d", len(summary.Pages))
		logger.Infof("Total orders exported: %d", summary.Rows())
		if summary.Outcome == crawler.OutcomeFinished && !summary.Exported {
			logger.Info("Orders were not exported")
		}
		return nil
	},
}

func applyCrawlFlags(cmd *cobra.Command, config *types.Config) error {
	flags := cmd.Flags()
	if flags.Changed("url") {
		config.StartURL = crawlFlags.url
	}
	if flags.Changed("invoices") {
		config.FetchInvoices = crawlFlags.invoices
	}
	if flags.Changed("yes") {
		config.ConfirmStart = !crawlFlags.yes
	}
	if crawlFlags.httpOnly {
		config.UseHeadlessBrowser = false
	}
	if crawlFlags.headed {
		config.Headless = false
	}
	if flags.Changed("output") {
		config.OutputDir = crawlFlags.output
	}
	if flags.Changed("settle") {
		config.SettleDelay = crawlFlags.settle
	}
	if flags.Changed("timeout") {
		config.Timeout = crawlFlags.timeout
	}
	if flags.Changed("concurrency") {
		config.MaxConcurrentRequests = crawlFlags.concurrency
	}
	if crawlFlags.selectors != "" {
		selectors, err := types.LoadSelectors(crawlFlags.selectors)
		if err != nil {
			return err
		}
		config.Selectors = selectors
	}
	return nil
}

func init() {
	defaults := types.DefaultConfig()
	flags := crawlCmd.Flags()
	flags.StringVar(&crawlFlags.url, "url", defaults.StartURL, "First page of the order-history listing")
	flags.BoolVar(&crawlFlags.resume, "resume", false, "Continue an active walk instead of starting over")
	flags.BoolVar(&crawlFlags.invoices, "invoices", false, "Save each order's invoice page")
	flags.BoolVarP(&crawlFlags.yes, "yes", "y", false, "Answer yes to every prompt")
	flags.BoolVar(&crawlFlags.httpOnly, "http-only", false, "Use HTTP requests only (disable headless browser)")
	flags.BoolVar(&crawlFlags.headed, "headed", false, "Show the browser window")
	flags.StringVarP(&crawlFlags.output, "output", "o", defaults.OutputDir, "Directory orders.csv and invoices are written to")
	flags.StringVar(&crawlFlags.selectors, "selectors", "", "YAML selector profile merged over the defaults")
	flags.DurationVar(&crawlFlags.settle, "settle", defaults.SettleDelay, "Wait after each page load before reading it")
	flags.DurationVar(&crawlFlags.timeout, "timeout", defaults.Timeout, "Browser action and request timeout")
	flags.IntVar(&crawlFlags.concurrency, "concurrency", defaults.MaxConcurrentRequests, "Maximum concurrent invoice downloads")
	flags.StringVar(&crawlFlags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the walk")

	rootCmd.AddCommand(crawlCmd)
}
