package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gbme/platform-assistant/chat"
	"github.com/gbme/platform-assistant/config"
	"github.com/gbme/platform-assistant/handlers"
	"github.com/gbme/platform-assistant/inventory"
	"github.com/gbme/platform-assistant/logger"
	"github.com/gbme/platform-assistant/rancher"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "platform-assistant",
		Short:         "Chat assistant for Rancher clusters and the server inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Bind(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger.Configure(cfg.LogLevel, cfg.LogType)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	clusters, records, err := buildSources(cfg)
	if err != nil {
		return err
	}
	if cfg.OriginsDefaulted() {
		log.Warn().Msg("ALLOWED_ORIGINS not set, defaulting to wildcard (*)")
	}
	if cfg.Source.UsesRancher() && !cfg.RancherVerifySSL {
		log.Warn().Msg("TLS verification disabled for Rancher (RANCHER_VERIFY_SSL=false)")
	}

	api := handlers.NewAPI(chat.New(clusters, records))
	hub := handlers.NewStatsHub(api, cfg.StatsInterval, originChecker(cfg))
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, api, hub),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      cfg.RancherTimeout*time.Duration(cfg.RancherRetries+1) + 10*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("source", string(cfg.Source)).Msg("platform assistant listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildSources returns the cluster and record sources for the configured mode. Either may be nil.
func buildSources(cfg *config.Config) (chat.ClusterSource, chat.RecordSource, error) {
	var (
		clusters chat.ClusterSource
		records  chat.RecordSource
	)
	switch {
	case cfg.Source == config.SourceMock || (cfg.Source.UsesRancher() && rancher.IsMock(cfg.RancherToken)):
		log.Warn().Msg("serving demo clusters (mock mode)")
		clusters = rancher.NewMock()
	case cfg.Source.UsesRancher():
		clusters = rancher.New(rancher.Options{
			BaseURL:   cfg.RancherURL,
			Token:     cfg.RancherToken,
			VerifySSL: cfg.RancherVerifySSL,
			Timeout:   cfg.RancherTimeout,
			Retries:   cfg.RancherRetries,
			CacheTTL:  cfg.RancherCacheTTL,
		})
	}
	if cfg.Source.UsesInventory() {
		store, err := inventory.Open(cfg.InventoryPath, cfg.InventorySheet)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", store.Path()).Str("sheet", cfg.InventorySheet).Msg("inventory workbook opened")
		records = store
	}
	return clusters, records, nil
}
