// Command deckd serves Markdown to PowerPoint conversion and slide search
// over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	godeck "github.com/bbiangul/go-deck"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("deckd failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr       string
		configPath string
		dbPath     string
		noIndex    bool
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "deckd",
		Short: "HTTP service for Markdown to PowerPoint conversion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
			// Structured JSON logging.
			log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

			cfg := godeck.LoadConfig("config.json")
			if configPath != "" {
				var err error
				if cfg, err = godeck.LoadConfigFile(configPath); err != nil {
					return err
				}
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}

			var lib *godeck.Library
			if !noIndex {
				var err error
				if lib, err = godeck.OpenLibrary(cfg); err != nil {
					return err
				}
				defer lib.Close()
			}

			h := newHandler(cfg, lib)
			srv := &http.Server{
				Addr:         addr,
				Handler:      chain(h.routes(), os.Getenv("DECKMD_API_KEY"), os.Getenv("DECKMD_CORS_ORIGINS")),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 2 * time.Minute,
				IdleTimeout:  120 * time.Second,
			}
			return serve(cmd.Context(), srv)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (JSON or YAML)")
	cmd.Flags().StringVar(&dbPath, "db", "", "index database path")
	cmd.Flags().BoolVar(&noIndex, "no-index", false, "disable the slide index endpoints")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

// serve runs srv until SIGINT/SIGTERM, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server stopped")
	return nil
}
