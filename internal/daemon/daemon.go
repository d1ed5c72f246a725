// Package daemon runs the long-lived mode: periodic fetch-and-build cycles,
// a filesystem watcher over the export directory, build events over NATS,
// and a Prometheus endpoint.
package daemon

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/typdocs/internal/config"
	"git.home.luguber.info/inful/typdocs/internal/errors"
	"git.home.luguber.info/inful/typdocs/internal/generate"
	"git.home.luguber.info/inful/typdocs/internal/logfields"
	"git.home.luguber.info/inful/typdocs/internal/metrics"
	"git.home.luguber.info/inful/typdocs/internal/source"
	"git.home.luguber.info/inful/typdocs/internal/state"
)

// Daemon coordinates scheduled fetches, rebuilds and event publication.
type Daemon struct {
	cfg       *config.Config
	store     *state.Store
	recorder  metrics.Recorder
	prom      *metrics.PrometheusRecorder
	publisher *Publisher

	// serializes fetch/build cycles from the scheduler and the watcher
	runMu sync.Mutex
}

// New wires up a daemon from config: state store, optional NATS publisher
// and optional Prometheus recorder.
func New(cfg *config.Config) (*Daemon, error) {
	store, err := state.NewStore(cfg.State.Path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryState, "failed to open state store")
	}

	publisher, err := NewPublisher(cfg.Events.NATSURL, cfg.Events.Subject)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	d := &Daemon{
		cfg:       cfg,
		store:     store,
		recorder:  metrics.NoopRecorder{},
		publisher: publisher,
	}
	if cfg.Metrics.Enabled {
		d.prom = metrics.NewPrometheusRecorder()
		d.recorder = d.prom
	}
	return d, nil
}

// Close releases the daemon's resources.
func (d *Daemon) Close() {
	d.publisher.Close()
	if err := d.store.Close(); err != nil {
		slog.Warn("Failed to close state store", logfields.Error(err))
	}
}

// BuildAll converts every discovered export, newest treated as latest, and
// publishes an event per completed version.
func (d *Daemon) BuildAll(ctx context.Context) error {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	return d.buildAllLocked(ctx)
}

func (d *Daemon) buildAllLocked(ctx context.Context) error {
	versions, err := generate.DiscoverVersions(d.cfg.Build.DataDir, d.cfg.Build.JSONSlug)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		slog.Warn("No exports found", logfields.Path(d.cfg.Build.DataDir))
		return nil
	}

	latest := versions[len(versions)-1]
	for _, version := range versions {
		result, err := generate.BuildVersion(ctx, d.cfg, version, version == latest, d.store, d.recorder)
		if err != nil {
			slog.Error("Version build failed", logfields.Version(version), logfields.Error(err))
			continue
		}
		if result.Skipped {
			continue
		}
		d.publisher.PublishBuildCompleted(BuildEvent{
			BuildID:     result.Report.BuildID,
			Version:     version,
			Pages:       result.Report.Pages,
			Failures:    len(result.Report.Failures),
			Success:     len(result.Report.Failures) == 0,
			CompletedAt: time.Now(),
		})
	}

	if d.cfg.Output.UnpackLatest {
		if err := generate.UnpackLatest(d.cfg.Output.Directory, latest); err != nil {
			return err
		}
	}
	return nil
}

// FetchAndBuild refreshes the upstream checkout, exports any missing
// versions, then rebuilds.
func (d *Daemon) FetchAndBuild(ctx context.Context) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	repo, err := source.OpenOrClone(ctx, d.cfg.Source.RepoURL, d.cfg.Source.RepoDir)
	if err != nil {
		slog.Error("Failed to open source repository", logfields.Error(err))
		return
	}

	exporter := source.NewExporter(d.cfg.Source.RepoDir, d.cfg.Build.DataDir, d.cfg.Build.AssetsDir, d.cfg.Build.JSONSlug)
	if _, err := exporter.FetchAll(ctx, repo, d.cfg.Source.MinVersion, "", false); err != nil {
		slog.Error("Fetch cycle failed", logfields.Error(err))
		return
	}

	if err := d.buildAllLocked(ctx); err != nil {
		slog.Error("Build cycle failed", logfields.Error(err))
	}
}

// Watch rebuilds whenever export files change, after an initial full build.
// Blocks until ctx is cancelled.
func (d *Daemon) Watch(ctx context.Context) error {
	if err := d.BuildAll(ctx); err != nil {
		slog.Error("Initial build failed", logfields.Error(err))
	}

	watcher, err := NewExportWatcher(d.cfg.Build.DataDir, d.cfg.Build.JSONSlug, func(ctx context.Context) {
		if err := d.BuildAll(ctx); err != nil {
			slog.Error("Rebuild failed", logfields.Error(err))
		}
	})
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if err := watcher.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

// Run starts the full daemon: metrics endpoint, periodic fetch-and-build and
// the export watcher. Blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	var metricsServer *http.Server
	if d.prom != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", d.prom.HTTPHandler())
		metricsServer = &http.Server{
			Addr:              d.cfg.Metrics.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			slog.Info("Serving metrics", slog.String("listen", d.cfg.Metrics.Listen))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
	}

	interval, err := d.cfg.Daemon.IntervalDuration()
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid daemon configuration")
	}

	scheduler, err := NewScheduler()
	if err != nil {
		return err
	}
	jobID, err := scheduler.SchedulePeriodic(interval, "fetch-and-build", func() {
		d.FetchAndBuild(ctx)
	})
	if err != nil {
		return err
	}
	slog.Info("Scheduled periodic fetch-and-build",
		slog.String("job_id", jobID),
		slog.Duration("interval", interval))
	scheduler.Start()

	// first cycle right away rather than waiting a full interval
	go d.FetchAndBuild(ctx)

	watchErr := d.Watch(ctx)

	if err := scheduler.Stop(); err != nil {
		slog.Warn("Scheduler shutdown failed", logfields.Error(err))
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	return watchErr
}
