package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"orderwalk/internal/types"
	"orderwalk/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	stateURL  string
	namespace string
)

var rootCmd = &cobra.Command{
	Use:           "orderwalk",
	Short:         "orderwalk walks an order-history listing and exports every order as CSV.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&stateURL, "state", "", "Crawl state store URL (memory://, sqlite://<path>, redis://...)")
	rootCmd.PersistentFlags().StringVar(&namespace, "namespace", "", "Prefix of the crawl state keys")
}

// loadConfig builds the configuration from defaults, ORDERWALK_* variables and
// the persistent flags, in increasing priority.
func loadConfig() (*types.Config, error) {
	config := types.DefaultConfig()
	if err := types.ApplyEnv(config); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if stateURL != "" {
		config.StateURL = stateURL
	}
	if namespace != "" {
		config.StateNamespace = namespace
	}
	return config, nil
}

func newLogger() *logrus.Logger {
	return utils.NewLogger(os.Stderr, verbose)
}

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
