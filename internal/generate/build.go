package generate

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"git.home.luguber.info/inful/typdocs/internal/config"
	"git.home.luguber.info/inful/typdocs/internal/docjson"
	"git.home.luguber.info/inful/typdocs/internal/errors"
	"git.home.luguber.info/inful/typdocs/internal/logfields"
	"git.home.luguber.info/inful/typdocs/internal/metrics"
	"git.home.luguber.info/inful/typdocs/internal/state"
)

// VersionResult reports the outcome of one version build.
type VersionResult struct {
	Version string
	Skipped bool
	Report  *Report
}

// BuildVersion converts one version's export into <output>/<version>. A
// missing export is fatal for this version only. When a state store is given
// and the export hash matches the recorded build, the version is skipped
// unless forced.
func BuildVersion(ctx context.Context, cfg *config.Config, version string, isLatest bool, store *state.Store, recorder metrics.Recorder) (*VersionResult, error) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	slog.Info("Building mdx docs for version", logfields.Version(version))

	jsonPath := filepath.Join(cfg.Build.DataDir, cfg.Build.JSONSlug+"_"+version+".json")
	if _, err := os.Stat(jsonPath); os.IsNotExist(err) {
		return nil, errors.New(errors.CategoryBuild, errors.SeverityFatal,
			"export JSON does not exist, generate it with the fetch command").
			WithContext("path", jsonPath).
			WithContext("version", version)
	}

	exportHash, err := state.HashFile(jsonPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to hash export")
	}

	if store != nil && !cfg.Build.Force {
		needed, err := store.ShouldBuild(ctx, version, exportHash)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryState, "failed to query build state")
		}
		if !needed {
			slog.Info("Export unchanged since last build, skipping", logfields.Version(version))
			return &VersionResult{Version: version, Skipped: true}, nil
		}
	}

	trees, err := docjson.LoadExport(jsonPath)
	if err != nil {
		return nil, err
	}

	finalOutputDir := filepath.Join(cfg.Output.Directory, version)
	if err := os.RemoveAll(finalOutputDir); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to clean version output directory")
	}
	if err := os.MkdirAll(finalOutputDir, 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create version output directory")
	}

	slog.Info("Generating MDX", logfields.Version(version), logfields.Path(finalOutputDir))

	start := time.Now()
	report, err := Run(ctx, trees, finalOutputDir, Options{
		Version:  version,
		IsLatest: isLatest,
		Workers:  cfg.Build.Workers,
		Lint:     true,
		Recorder: recorder,
	})
	duration := time.Since(start)
	success := err == nil && len(report.Failures) == 0
	recorder.ObserveBuildDuration(version, duration, success)
	recorder.IncBuildResult(success)
	if err != nil {
		return nil, err
	}

	for _, finding := range report.Findings {
		slog.Debug("Lint finding", logfields.Version(version), slog.String("finding", finding.String()))
	}

	if store != nil {
		rec := state.BuildRecord{
			Version:    version,
			ExportHash: exportHash,
			BuildID:    report.BuildID,
			Pages:      report.Pages,
			Failures:   len(report.Failures),
			BuiltAt:    time.Now(),
		}
		if err := store.RecordBuild(ctx, rec); err != nil {
			slog.Warn("Failed to record build state", logfields.Version(version), logfields.Error(err))
		}
	}

	slog.Info("Completed version", logfields.Version(version), logfields.DurationMS(float64(duration.Milliseconds())))
	return &VersionResult{Version: version, Report: report}, nil
}

// DiscoverVersions lists versions with an export present in the data
// directory, ordered ascending (semver when parseable, lexical otherwise).
// The last entry is treated as latest.
func DiscoverVersions(dataDir, jsonSlug string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read data directory")
	}

	prefix := jsonSlug + "_"
	var versions []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			if !entry.IsDir() {
				slog.Warn("Skipping non-JSON file", logfields.Path(name))
			}
			continue
		}
		stem := strings.TrimSuffix(name, ".json")
		if !strings.HasPrefix(stem, prefix) {
			slog.Warn("Skipping unrecognized export file", logfields.Path(name))
			continue
		}
		versions = append(versions, strings.TrimPrefix(stem, prefix))
	}

	sort.Slice(versions, func(i, j int) bool {
		vi, vj := canonicalSemver(versions[i]), canonicalSemver(versions[j])
		if vi != "" && vj != "" {
			return semver.Compare(vi, vj) < 0
		}
		return versions[i] < versions[j]
	})
	return versions, nil
}

func canonicalSemver(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// UnpackLatest copies the latest version's tree over the output root and
// removes the versioned copy.
func UnpackLatest(outputDir, version string) error {
	versionDir := filepath.Join(outputDir, version)
	if _, err := os.Stat(versionDir); os.IsNotExist(err) {
		return errors.New(errors.CategoryFileSystem, errors.SeverityError, "latest version output does not exist").
			WithContext("version", version)
	}

	err := filepath.WalkDir(versionDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(versionDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(outputDir, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		return copyFile(path, target)
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to unpack latest version")
	}

	return os.RemoveAll(versionDir)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
