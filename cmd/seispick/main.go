package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tremorlab/seispick/internal/adapter/catalog"
	httpadapter "github.com/tremorlab/seispick/internal/adapter/http"
	"github.com/tremorlab/seispick/internal/adapter/inventory"
	"github.com/tremorlab/seispick/internal/config"
	"github.com/tremorlab/seispick/internal/domain"
	"github.com/tremorlab/seispick/internal/observability"
	"github.com/tremorlab/seispick/internal/pipeline"
	"github.com/tremorlab/seispick/internal/runner"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// app wires the store, inventory, and locator for one command invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *domain.Store
	locator *pipeline.Locator
	metrics *observability.Metrics
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return nil, err
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	inv, err := inventory.Load(cfg.InventoryFile)
	if err != nil {
		logger.Error("failed to load inventory", "error", err)
		return nil, err
	}
	event, err := catalog.Load(cfg.EventFile)
	if err != nil {
		logger.Error("failed to load event", "error", err)
		return nil, err
	}
	store := domain.NewStoreWithEvent(event, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		locator: pipeline.NewLocator(store, inv, runner.New(logger), metrics, logger, cfg),
		metrics: metrics,
	}, nil
}

func (a *app) save() error {
	if err := catalog.Save(a.cfg.EventFile, a.store.Event()); err != nil {
		a.logger.Error("failed to save event", "error", err)
		return err
	}
	return nil
}

// run loads the session, applies op, and saves the event back.
func run(op func(context.Context, *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		if err := op(cmd.Context(), a); err != nil {
			a.logger.Error("command failed", "error", err)
			return err
		}
		return a.save()
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "seispick",
		Short:         "Seismic event analysis against external location programs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	locate := &cobra.Command{
		Use:   "locate",
		Short: "Run a location program over the event's picks",
	}
	locate.AddCommand(
		&cobra.Command{
			Use:   "hypo2000",
			Short: "Locate with Hypo2000",
			RunE: run(func(ctx context.Context, a *app) error {
				return a.locator.LocateHypo2000(ctx)
			}),
		},
		&cobra.Command{
			Use:   "nlloc",
			Short: "Locate with NonLinLoc",
			RunE: run(func(ctx context.Context, a *app) error {
				return a.locator.LocateNLLoc(ctx)
			}),
		},
	)

	root.AddCommand(
		locate,
		&cobra.Command{
			Use:   "focmec",
			Short: "Search focal mechanisms over the located polarities",
			RunE: run(func(ctx context.Context, a *app) error {
				return a.locator.RunFocmec(ctx)
			}),
		},
		&cobra.Command{
			Use:   "nextfm",
			Short: "Cycle to the next focal mechanism solution",
			RunE: run(func(_ context.Context, a *app) error {
				_, err := a.store.NextFocalMechanism()
				return err
			}),
		},
		&cobra.Command{
			Use:   "magnitude",
			Short: "Compute station and network magnitudes from amplitudes",
			RunE: run(func(_ context.Context, a *app) error {
				return a.locator.ComputeMagnitudes()
			}),
		},
		&cobra.Command{
			Use:   "gap",
			Short: "Recompute the azimuthal gap of the current origin",
			RunE: run(func(_ context.Context, a *app) error {
				return domain.UpdateAzimuthalGap(a.store, a.logger)
			}),
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove duplicate picks",
			RunE: run(func(_ context.Context, a *app) error {
				a.locator.CleanupPicks()
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Discard all analysis state and start a fresh event",
			RunE: run(func(_ context.Context, a *app) error {
				a.store.ClearEvent()
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clearloc",
			Short: "Discard the origin and magnitudes, keeping picks and amplitudes",
			RunE: run(func(_ context.Context, a *app) error {
				a.store.ClearOriginAndMagnitudes()
				return nil
			}),
		},
		newServeCommand(),
	)

	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve event status and metrics over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			srv := httpadapter.NewServer(a.cfg.HTTPAddr, a.store, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Error("http server error", "error", err)
				}
			}()

			<-ctx.Done()
			a.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("http server shutdown error", "error", err)
			}
			a.logger.Info("shutdown complete")
			return nil
		},
	}
}
