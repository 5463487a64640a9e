package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crestline-vc/termsheet-cli/internal/api"
	"github.com/crestline-vc/termsheet-cli/internal/extract"
	"github.com/crestline-vc/termsheet-cli/internal/session"
	"github.com/crestline-vc/termsheet-cli/internal/source"
	"github.com/crestline-vc/termsheet-cli/pkg/anthropic"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API for interactive term sheet generation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		store := session.NewMemoryStore(
			time.Duration(cfg.Session.TTLHours)*time.Hour,
			time.Duration(cfg.Session.CleanupIntervalMin)*time.Minute,
		)

		client := anthropic.NewClient(cfg.Anthropic.Key)
		extractor := extract.New(client, extract.Options{
			Model:       cfg.Anthropic.Model,
			MaxTokens:   int64(cfg.Anthropic.MaxTokens),
			Pacing:      time.Duration(cfg.Extract.PacingSecs) * time.Second,
			CallTimeout: time.Duration(cfg.Extract.CallTimeoutSecs) * time.Second,
		})

		srv := api.New(store, extractor, source.Load, cfg.Data.Dir, cfg.Output.Dir, cfg.Anthropic.Model, cfg.Server.AllowedOrigins)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.Handler(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			httpSrv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
