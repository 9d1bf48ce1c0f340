package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/tally/schema"
	"github.com/spektr-org/tally/ui"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr, source, schemaFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server",
		Long: `Run the dashboard. The dataset named by --data (or TALLY_DATA_SOURCE)
is loaded at startup; a failed load is shown as a banner and more
datasets can be uploaded from the page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			if source != "" {
				c.cfg.Data.Source = source
			}
			if schemaFile != "" {
				c.cfg.Data.SchemaFile = schemaFile
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().StringVar(&source, "data", "", "Dataset file path or http(s) URL to load at startup")
	cmd.Flags().StringVar(&schemaFile, "schema", "", "Schema YAML file (default: built-in contest schema)")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	cfg := c.cfg
	logger := c.logger

	var sch *schema.Config
	if cfg.Data.SchemaFile != "" {
		var err error
		if sch, err = schema.LoadFile(cfg.Data.SchemaFile); err != nil {
			return err
		}
		logger.Info("schema loaded",
			zap.String("file", cfg.Data.SchemaFile),
			zap.String("name", sch.Name),
			zap.Int("columns", len(sch.Columns)))
	}

	app, err := ui.NewApp(ui.Config{
		Schema:         sch,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		KeywordLimit:   cfg.Engine.KeywordLimit,
		TopN:           cfg.Engine.TopN,
		About:          cfg.About,
		Logger:         logger,
		Client:         &http.Client{Timeout: cfg.Data.FetchTimeout},
	}, ui.NewStore())
	if err != nil {
		return err
	}

	if cfg.Data.Source != "" {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.Data.FetchTimeout)
		// A failed startup load leaves the server up with a banner.
		_, _ = app.LoadStartup(loadCtx, sourceName(cfg.Data.Source), cfg.Data.Source)
		cancel()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("dashboard listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// sourceName is the dataset name shown for a startup source.
func sourceName(source string) string {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return source
	}
	return filepath.Base(source)
}
