// Package pipeline orchestrates one location cycle: encode the event's
// readings into the exchange files of an external location program, run the
// program, parse its results back and derive the dependent quantities.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tremorlab/seispick/internal/adapter/focmec"
	"github.com/tremorlab/seispick/internal/adapter/hypo71"
	"github.com/tremorlab/seispick/internal/adapter/nlloc"
	"github.com/tremorlab/seispick/internal/config"
	"github.com/tremorlab/seispick/internal/domain"
	"github.com/tremorlab/seispick/internal/observability"
	"github.com/tremorlab/seispick/internal/stationcode"
)

// Program describes one external program invocation.
type Program struct {
	Name  string
	Path  string
	Args  []string
	Dir   string
	Stdin string
}

// Result is the captured outcome of a program run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external programs. A non-zero exit status comes back in
// the Result, not as an error.
type Runner interface {
	Run(ctx context.Context, prog Program) (Result, error)
}

// Exchange file names inside the work directory.
const (
	hyp2000PhaseFile   = "hyp2000.pha"
	hyp2000StationFile = "stations.dat"
	hyp2000SummaryFile = "hypo.prt"

	nllocObsFile     = "nlloc.obs"
	nllocSummaryFile = "last.hyp"
	nllocScatterFile = "last.scat"

	focmecPhaseFile   = "focmec.dat"
	focmecSummaryFile = "mechanism.out"
)

// Locator drives the location programs against the event store. The current
// origin is only replaced after a result file parsed completely; any failure
// leaves the event untouched.
type Locator struct {
	store     *domain.Store
	inventory domain.StationInventory
	runner    Runner
	estimator domain.MagnitudeEstimator
	metrics   *observability.Metrics
	logger    *slog.Logger
	cfg       *config.Config
}

func NewLocator(store *domain.Store, inv domain.StationInventory, runner Runner,
	metrics *observability.Metrics, logger *slog.Logger, cfg *config.Config) *Locator {
	return &Locator{
		store:     store,
		inventory: inv,
		runner:    runner,
		estimator: domain.RichterEstimator{},
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

func (l *Locator) codes() *stationcode.Map {
	stations := l.inventory.Stations()
	names := make([]string, 0, len(stations))
	for _, sta := range stations {
		names = append(names, sta.Code)
	}
	return stationcode.New(names)
}

// LocateHypo2000 runs one Hypo2000 cycle.
func (l *Locator) LocateHypo2000(ctx context.Context) error {
	start := time.Now()
	if err := l.locateHypo2000(ctx); err != nil {
		l.metrics.LocationRuns.WithLabelValues("hyp2000", "error").Inc()
		return err
	}
	l.metrics.LocationRuns.WithLabelValues("hyp2000", "success").Inc()
	l.metrics.LocationDuration.WithLabelValues("hyp2000").Observe(time.Since(start).Seconds())
	return nil
}

func (l *Locator) locateHypo2000(ctx context.Context) error {
	stations := l.inventory.Stations()
	codes := l.codes()

	phases, err := hypo71.EncodePhases(l.store, stations, codes, l.logger)
	if err != nil {
		return err
	}
	stationData, err := hypo71.EncodeStations(stations, codes)
	if err != nil {
		return err
	}
	if err := l.writeFile(hyp2000PhaseFile, phases); err != nil {
		return err
	}
	if err := l.writeFile(hyp2000StationFile, stationData); err != nil {
		return err
	}

	result, err := l.runner.Run(ctx, Program{
		Name: "hyp2000",
		Path: l.cfg.Hyp2000Bin,
		Dir:  l.cfg.WorkDir,
	})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return &domain.ExternalProcessError{Program: "hyp2000", ExitCode: result.ExitCode, Stderr: result.Stderr}
	}

	summary, err := l.readFile(hyp2000SummaryFile)
	if err != nil {
		return err
	}
	o, err := hypo71.DecodeSummary(summary, l.store, codes, l.logger)
	if err != nil {
		return err
	}
	l.finishLocation(o)
	return nil
}

// LocateNLLoc runs one NonLinLoc cycle against the configured control file.
func (l *Locator) LocateNLLoc(ctx context.Context) error {
	start := time.Now()
	if err := l.locateNLLoc(ctx); err != nil {
		l.metrics.LocationRuns.WithLabelValues("nlloc", "error").Inc()
		return err
	}
	l.metrics.LocationRuns.WithLabelValues("nlloc", "success").Inc()
	l.metrics.LocationDuration.WithLabelValues("nlloc").Observe(time.Since(start).Seconds())
	return nil
}

func (l *Locator) locateNLLoc(ctx context.Context) error {
	obs := nlloc.EncodePhases(l.store.Event().Picks, l.cfg.DefaultPickUncertainty, l.logger)
	if err := l.writeFile(nllocObsFile, obs); err != nil {
		return err
	}

	result, err := l.runner.Run(ctx, Program{
		Name: "nlloc",
		Path: l.cfg.NLLocBin,
		Args: []string{l.cfg.NLLocControl},
		Dir:  l.cfg.WorkDir,
	})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return &domain.ExternalProcessError{Program: "nlloc", ExitCode: result.ExitCode, Stderr: result.Stderr}
	}

	summary, err := l.readFile(nllocSummaryFile)
	if err != nil {
		return err
	}
	o, err := nlloc.DecodeSummary(summary, l.store, l.logger)
	if err != nil {
		return err
	}

	if control, err := l.readFile(l.cfg.NLLocControl); err != nil {
		l.logger.Warn("cannot read control file, leaving the earth model empty", "error", err)
	} else if model, err := nlloc.DecodeControlModel(control); err != nil {
		l.logger.Warn("cannot determine the earth model", "error", err)
	} else {
		o.EarthModel = model
	}

	if scatter, err := os.Open(filepath.Join(l.cfg.WorkDir, nllocScatterFile)); err != nil {
		l.logger.Warn("cannot read scatter file", "error", err)
	} else {
		samples, err := nlloc.ReadScatter(scatter)
		scatter.Close()
		if err != nil {
			l.logger.Warn("cannot parse scatter file", "error", err)
		} else {
			o.Scatter = samples
		}
	}

	l.finishLocation(o)
	return nil
}

// finishLocation installs a fully parsed origin and refreshes everything
// derived from it.
func (l *Locator) finishLocation(o *domain.Origin) {
	l.store.ReplaceOrigin(o)
	if err := domain.UpdateAzimuthalGap(l.store, l.logger); err != nil {
		l.logger.Warn("cannot update azimuthal gap", "error", err)
	}
	domain.UpdateArrivalDistanceStats(o)
	if err := l.ComputeMagnitudes(); err != nil {
		l.logger.Warn("cannot recompute magnitudes", "error", err)
	}
	l.metrics.PhasesUsed.Observe(float64(o.Quality.UsedPhaseCount))
	if dropped := o.Quality.UsedPhaseCount - len(o.Arrivals); dropped > 0 {
		l.metrics.DroppedReadings.WithLabelValues("no_pick").Add(float64(dropped))
	}
	l.logger.Info("origin replaced",
		"method", o.Method,
		"latitude", o.Latitude,
		"longitude", o.Longitude,
		"depth_m", o.Depth,
		"used_phases", o.Quality.UsedPhaseCount,
		"used_stations", o.Quality.UsedStationCount,
	)
}

// RunFocmec runs a focal mechanism search over the current origin's
// polarities. Exit status 1 means the search space held no acceptable
// solution; existing solutions on the event are kept in that case.
func (l *Locator) RunFocmec(ctx context.Context) error {
	data, count, err := focmec.EncodePolarities(l.store, l.codes(), l.logger)
	if err != nil {
		l.metrics.FocmecRuns.WithLabelValues("error").Inc()
		return err
	}
	l.logger.Info("polarities for focal mechanism search", "count", count)
	if err := l.writeFile(focmecPhaseFile, data); err != nil {
		l.metrics.FocmecRuns.WithLabelValues("error").Inc()
		return err
	}

	result, err := l.runner.Run(ctx, Program{
		Name: "focmec",
		Path: l.cfg.FocmecBin,
		Dir:  l.cfg.WorkDir,
	})
	if err != nil {
		l.metrics.FocmecRuns.WithLabelValues("error").Inc()
		return err
	}
	if result.ExitCode == 1 {
		l.metrics.FocmecRuns.WithLabelValues("no_solution").Inc()
		return fmt.Errorf("focmec did not find a suitable solution: %w",
			&domain.ExternalProcessError{Program: "focmec", ExitCode: 1, Stderr: result.Stderr})
	}
	if result.ExitCode != 0 {
		l.metrics.FocmecRuns.WithLabelValues("error").Inc()
		return &domain.ExternalProcessError{Program: "focmec", ExitCode: result.ExitCode, Stderr: result.Stderr}
	}

	summary, err := l.readFile(focmecSummaryFile)
	if err != nil {
		l.metrics.FocmecRuns.WithLabelValues("error").Inc()
		return err
	}
	fms, err := focmec.DecodeSummary(summary, count, l.logger)
	if err != nil {
		l.metrics.FocmecRuns.WithLabelValues("error").Inc()
		return err
	}
	l.store.SetFocalMechanisms(fms)
	l.metrics.FocmecRuns.WithLabelValues("success").Inc()
	l.logger.Info("focal mechanism search finished", "solutions", len(fms))
	return nil
}

// ComputeMagnitudes derives station magnitudes from the event's amplitude
// readings and aggregates them into the network magnitude.
func (l *Locator) ComputeMagnitudes() error {
	if err := domain.ComputeStationMagnitudes(l.store, l.inventory, l.estimator, l.logger); err != nil {
		return err
	}
	domain.UpdateNetworkMagnitude(l.store, l.logger)
	l.metrics.StationMagnitudes.Add(float64(len(l.store.Event().StationMagnitudes)))
	return nil
}

// CleanupPicks removes duplicate picks left behind by repeated picking.
func (l *Locator) CleanupPicks() int {
	n := l.store.RemoveDuplicatePicks()
	l.metrics.DuplicatePicksRemoved.Add(float64(n))
	return n
}

func (l *Locator) writeFile(name, data string) error {
	path := filepath.Join(l.cfg.WorkDir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (l *Locator) readFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(l.cfg.WorkDir, name))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}
