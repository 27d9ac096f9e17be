package main

import (
	"fmt"
	"os"

	"orderwalk/crawler"
	"orderwalk/extractor"
	"orderwalk/internal/csvcodec"
	"orderwalk/internal/state"
	"orderwalk/internal/types"
	"orderwalk/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func openRepository(cmd *cobra.Command) (*state.Repository, func(), error) {
	config, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := state.Open(cmd.Context(), config.StateURL)
	if err != nil {
		return nil, nil, err
	}
	return state.NewRepository(store, config.StateNamespace), func() { store.Close() }, nil
}

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "Lists the order cards of the current walk that could not be parsed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeStore, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		st, err := repo.Load(cmd.Context())
		if err != nil {
			return err
		}

		t := utils.NewTable(os.Stdout)
		t.SetTitle("Walk active: %t, rows: %d", st.Active, csvcodec.Rows(st.AccumulatedCSV))
		t.AppendHeader(table.Row{"#", "Snapshot"})
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 100}})
		for i, snapshot := range st.FailedSnapshots {
			t.AppendRow(table.Row{i + 1, snapshot})
		}
		t.Render()
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clears the crawl state so the next walk starts from scratch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeStore, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := repo.Clear(cmd.Context()); err != nil {
			return err
		}
		keys := repo.Keys()
		fmt.Fprintf(os.Stdout, "Removed %s, %s and %s\n", keys.Active, keys.CSV, keys.Failed)
		return nil
	},
}

var probeFlags struct {
	url       string
	httpOnly  bool
	selectors string
}

var probeCmd = &cobra.Command{
	Use:   "probe [--url <listing>]",
	Short: "Shows how many nodes each selector matches on one page.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		config, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("url") {
			config.StartURL = probeFlags.url
		}
		if probeFlags.selectors != "" {
			if config.Selectors, err = types.LoadSelectors(probeFlags.selectors); err != nil {
				return err
			}
		}

		var page crawler.Page
		if probeFlags.httpOnly {
			page = utils.NewStaticPage(config, config.StartURL, logger)
		} else {
			browser := utils.NewBrowserClient(config, logger)
			defer browser.Close()
			if page, err = browser.Open(cmd.Context(), config.StartURL); err != nil {
				return err
			}
		}

		doc, err := page.Document(cmd.Context())
		if err != nil {
			return err
		}
		report := extractor.NewExtractor(config.Selectors, logger, nil).Probe(doc)

		t := utils.NewTable(os.Stdout)
		t.SetTitle("%s", page.URL())
		t.AppendHeader(table.Row{"Field", "Selector", "Matches"})
		for _, m := range report.Matches {
			t.AppendRow(table.Row{m.Field, m.Selector, m.Matches})
		}
		t.AppendFooter(table.Row{"cards", fmt.Sprintf("%d parsed, %d failed", report.Parsed, report.Failed), report.Cards})
		t.Render()

		if len(report.Failures) > 0 {
			ft := utils.NewTable(os.Stdout)
			ft.AppendHeader(table.Row{"Error", "Snapshot"})
			ft.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 80}})
			for _, f := range report.Failures {
				ft.AppendRow(table.Row{f.Err.Error(), f.Snapshot})
			}
			ft.Render()
		}
		return nil
	},
}

func init() {
	probeCmd.Flags().StringVar(&probeFlags.url, "url", types.DefaultConfig().StartURL, "Listing page to probe")
	probeCmd.Flags().BoolVar(&probeFlags.httpOnly, "http-only", false, "Fetch the page without a browser")
	probeCmd.Flags().StringVar(&probeFlags.selectors, "selectors", "", "YAML selector profile merged over the defaults")

	rootCmd.AddCommand(failuresCmd, resetCmd, probeCmd)
}
