package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/typdocs/internal/config"
	"git.home.luguber.info/inful/typdocs/internal/daemon"
	"git.home.luguber.info/inful/typdocs/internal/generate"
	"git.home.luguber.info/inful/typdocs/internal/logfields"
	"git.home.luguber.info/inful/typdocs/internal/metrics"
	"git.home.luguber.info/inful/typdocs/internal/source"
	"git.home.luguber.info/inful/typdocs/internal/state"
	"git.home.luguber.info/inful/typdocs/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"typdocs.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		TargetVersion string `short:"t" help:"Build MDX for one export version (e.g. v0.12.0)"`
		All           bool   `help:"Build MDX for every discovered export"`
		UnpackLatest  bool   `help:"Copy the latest version's tree over the output root"`
		Sequential    bool   `help:"Render pages one at a time instead of using the worker pool"`
		Force         bool   `help:"Rebuild even when the export is unchanged"`
	} `cmd:"" help:"Convert docs JSON exports into an MDX tree"`

	Fetch struct {
		TargetVersion string `short:"t" help:"Export docs JSON for one release tag"`
		All           bool   `help:"Export docs JSON for every release at or above the configured minimum"`
		Force         bool   `help:"Re-export even when JSON and assets already exist"`
	} `cmd:"" help:"Clone the upstream repository and generate docs JSON exports"`

	Versions struct{} `cmd:"" help:"List discovered exports and their build state"`

	Watch struct{} `cmd:"" help:"Rebuild whenever export files change"`

	Daemon struct{} `cmd:"" help:"Run continuously: periodic fetch-and-build, watcher, metrics"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch kctx.Command() {
	case "build":
		err = runBuild(ctx)
	case "fetch":
		err = runFetch(ctx)
	case "versions":
		err = runVersions(ctx)
	case "watch":
		err = runWatch(ctx)
	case "daemon":
		err = runDaemon(ctx)
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
	case "version":
		fmt.Printf("typdocs %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	}
	if err != nil {
		slog.Error("Command failed", logfields.Error(err))
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(CLI.Config); os.IsNotExist(err) {
		slog.Debug("No configuration file found, using defaults", logfields.Path(CLI.Config))
		return config.Default(), nil
	}
	return config.Load(CLI.Config)
}

func runBuild(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Build.Force = cfg.Build.Force || CLI.Build.Force

	versions, err := generate.DiscoverVersions(cfg.Build.DataDir, cfg.Build.JSONSlug)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return fmt.Errorf("no exports found in %s, run fetch first", cfg.Build.DataDir)
	}
	latest := versions[len(versions)-1]

	var targets []string
	switch {
	case CLI.Build.All:
		targets = versions
	case CLI.Build.TargetVersion != "":
		target := ""
		for _, v := range versions {
			if v == CLI.Build.TargetVersion || v == "v"+CLI.Build.TargetVersion {
				target = v
				break
			}
		}
		if target == "" {
			return fmt.Errorf("version %s not found among exports", CLI.Build.TargetVersion)
		}
		targets = []string{target}
	default:
		targets = []string{latest}
	}

	store, err := state.NewStore(cfg.State.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close state store", logfields.Error(err))
		}
	}()

	if cfg.Output.Clean {
		if err := os.RemoveAll(cfg.Output.Directory); err != nil {
			return fmt.Errorf("clean output directory: %w", err)
		}
	}

	for _, target := range targets {
		result, err := generate.BuildVersion(ctx, cfg, target, target == latest, store, metrics.NoopRecorder{})
		if err != nil {
			return err
		}
		if !result.Skipped && len(result.Report.Failures) > 0 {
			slog.Warn("Version built with page failures",
				logfields.Version(target),
				logfields.Count(len(result.Report.Failures)))
		}
	}

	if cfg.Output.UnpackLatest || CLI.Build.UnpackLatest {
		if err := generate.UnpackLatest(cfg.Output.Directory, latest); err != nil {
			return err
		}
		slog.Info("Unpacked latest version over output root", logfields.Version(latest))
	}
	return nil
}

func runFetch(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repo, err := source.OpenOrClone(ctx, cfg.Source.RepoURL, cfg.Source.RepoDir)
	if err != nil {
		return err
	}

	only := CLI.Fetch.TargetVersion
	if !CLI.Fetch.All && only == "" {
		tags, err := repo.Tags()
		if err != nil {
			return err
		}
		releases := source.VersionTags(tags, cfg.Source.MinVersion)
		if len(releases) == 0 {
			return fmt.Errorf("no release tags at or above %s", cfg.Source.MinVersion)
		}
		only = releases[len(releases)-1]
	}

	exporter := source.NewExporter(cfg.Source.RepoDir, cfg.Build.DataDir, cfg.Build.AssetsDir, cfg.Build.JSONSlug)
	exported, err := exporter.FetchAll(ctx, repo, cfg.Source.MinVersion, only, CLI.Fetch.Force)
	if err != nil {
		return err
	}
	slog.Info("Completed JSON exports", logfields.Count(len(exported)))
	return nil
}

func runVersions(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	versions, err := generate.DiscoverVersions(cfg.Build.DataDir, cfg.Build.JSONSlug)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Println("No exports found.")
		return nil
	}

	store, err := state.NewStore(cfg.State.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	for i, v := range versions {
		label := v
		if i == len(versions)-1 {
			label += " (latest)"
		}
		rec, err := store.LastBuild(ctx, v)
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Printf("%s\tnever built\n", label)
			continue
		}
		fmt.Printf("%s\tbuilt %s\tpages %d\tfailures %d\n",
			label, rec.BuiltAt.Format("2006-01-02 15:04:05"), rec.Pages, rec.Failures)
	}
	return nil
}

func runWatch(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Watch(ctx)
}

func runDaemon(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	slog.Info("Starting daemon mode")
	return d.Run(ctx)
}
