package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/tally/internal/config"
	"github.com/spektr-org/tally/internal/logging"
)

// ============================================================================
// TALLY CLI: Contest submission dashboard and batch summaries
// ============================================================================

const version = "0.3.0"

// cli carries state shared by subcommands once the root pre-run has loaded
// configuration and built the logger.
type cli struct {
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:     "tally",
		Short:   "Filter and count contest submissions",
		Version: version,
		Long: `tally serves a dashboard over a table of contest submissions and
prints the same counts from the command line.

Configuration is read from the YAML file named by TALLY_CONFIG and from
TALLY_* environment variables (a .env file is honoured).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if c.verbose {
				cfg.Log.Level = "debug"
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newServeCmd(c))
	root.AddCommand(newSummaryCmd(c))
	root.AddCommand(newDiscoverCmd(c))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
