package source

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"git.home.luguber.info/inful/typdocs/internal/errors"
	"git.home.luguber.info/inful/typdocs/internal/logfields"
)

// Exporter runs the upstream docs export (a cargo build) for checked-out
// tags. When sccache is on PATH it is used as the compiler wrapper.
type Exporter struct {
	repoDir     string
	dataDir     string
	assetsDir   string
	jsonSlug    string
	sccachePath string
}

// NewExporter creates an exporter writing docs_<tag>.json files into dataDir
// and per-tag asset trees into assetsDir.
func NewExporter(repoDir, dataDir, assetsDir, jsonSlug string) *Exporter {
	sccachePath, err := exec.LookPath("sccache")
	if err == nil {
		slog.Info("Found sccache, build acceleration enabled", logfields.Path(sccachePath))
	} else {
		slog.Warn("sccache not found, using default cargo")
		sccachePath = ""
	}
	return &Exporter{
		repoDir:     repoDir,
		dataDir:     dataDir,
		assetsDir:   assetsDir,
		jsonSlug:    jsonSlug,
		sccachePath: sccachePath,
	}
}

// JSONPath returns where the export for a tag is written.
func (e *Exporter) JSONPath(tag string) string {
	return filepath.Join(e.dataDir, e.jsonSlug+"_"+tag+".json")
}

// ShouldExport reports whether a tag still needs exporting: true unless both
// its JSON file and its assets directory already exist.
func (e *Exporter) ShouldExport(tag string) bool {
	if _, err := os.Stat(e.JSONPath(tag)); err != nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(e.assetsDir, tag)); err != nil {
		return true
	}
	slog.Info("JSON and assets already exist, skipping export", logfields.Tag(tag))
	return false
}

// Export checks out a tag and runs the docs export. It first builds with the
// system Rust; on failure it retries once with the toolchain the checkout
// pins, installing (and afterwards removing) it when missing.
func (e *Exporter) Export(ctx context.Context, repo *Repo, tag string) (string, error) {
	slog.Info("Generating docs JSON", logfields.Tag(tag))

	if err := repo.Checkout(tag); err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.dataDir, 0o750); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to create data directory")
	}
	assetsDir := filepath.Join(e.assetsDir, tag)
	if err := os.MkdirAll(assetsDir, 0o750); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to create assets directory")
	}

	jsonPath := e.JSONPath(tag)

	if err := e.runCargo(ctx, tag, "", assetsDir, jsonPath); err == nil {
		slog.Info("Export successful with system Rust", logfields.Tag(tag))
		return jsonPath, nil
	}
	slog.Warn("Export failed with system Rust, trying pinned toolchain", logfields.Tag(tag))

	pinned := PinnedRustVersion(e.repoDir)
	if pinned == "" {
		return "", errors.New(errors.CategoryToolchain, errors.SeverityError,
			"no pinned Rust version found, cannot retry export").
			WithContext("tag", tag)
	}

	installedByUs := false
	if !ToolchainInstalled(ctx, pinned) {
		if err := InstallToolchain(ctx, pinned); err != nil {
			return "", err
		}
		installedByUs = true
	}
	defer func() {
		if installedByUs {
			if err := UninstallToolchain(context.WithoutCancel(ctx), pinned); err != nil {
				slog.Warn("Failed to uninstall toolchain", logfields.Error(err))
			}
		}
	}()

	if err := e.runCargo(ctx, tag, pinned, assetsDir, jsonPath); err != nil {
		return "", errors.WrapError(err, errors.CategoryToolchain, "export failed with pinned toolchain").
			WithContext("tag", tag).
			WithContext("rust_version", pinned)
	}

	slog.Info("Export successful with pinned Rust", logfields.Tag(tag), slog.String("rust_version", pinned))
	return jsonPath, nil
}

func (e *Exporter) runCargo(ctx context.Context, tag, toolchain, assetsDir, jsonPath string) error {
	absAssets, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	absJSON, err := filepath.Abs(jsonPath)
	if err != nil {
		return err
	}

	args := []string{}
	if toolchain != "" {
		args = append(args, "+"+toolchain)
	}
	args = append(args,
		"run",
		"--package", "typst-docs",
		"--color", "always",
		"--release",
		"--locked",
		"--",
		"--assets-dir", absAssets,
		"--out-file", absJSON,
	)

	cmd := exec.CommandContext(ctx, "cargo", args...)
	cmd.Dir = e.repoDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if e.sccachePath != "" {
		cmd.Env = append(cmd.Env, "RUSTC_WRAPPER="+e.sccachePath)
	}

	slog.Info("Running cargo export", logfields.Tag(tag), slog.String("toolchain", toolchain))
	if err := cmd.Run(); err != nil {
		return errors.WrapError(err, errors.CategoryBuild, "cargo run failed").
			WithContext("tag", tag)
	}
	if _, err := os.Stat(jsonPath); err != nil {
		return errors.New(errors.CategoryBuild, errors.SeverityError, "cargo run produced no output file").
			WithContext("path", jsonPath)
	}
	return nil
}

// FetchAll exports every release tag at or above minVersion that still needs
// exporting, or just the tag named by only. Failures are per-tag; the
// remaining tags are still attempted. force re-exports tags whose output
// already exists.
func (e *Exporter) FetchAll(ctx context.Context, repo *Repo, minVersion, only string, force bool) ([]string, error) {
	tags, err := repo.Tags()
	if err != nil {
		return nil, err
	}

	releases := VersionTags(tags, minVersion)
	if len(releases) == 0 {
		return nil, errors.New(errors.CategoryGit, errors.SeverityError, "no release tags found").
			WithContext("min_version", minVersion)
	}
	slog.Info("Found relevant versions", logfields.Count(len(releases)))

	if only != "" {
		found := false
		for _, tag := range releases {
			if tag == only || VersionFromTag(tag) == only {
				releases = []string{tag}
				found = true
				break
			}
		}
		if !found {
			return nil, errors.New(errors.CategoryValidation, errors.SeverityFatal, "requested version not found among release tags").
				WithContext("version", only)
		}
	}

	var exported []string
	for _, tag := range releases {
		if !force && !e.ShouldExport(tag) {
			continue
		}
		path, err := e.Export(ctx, repo, tag)
		if err != nil {
			slog.Error("Export failed", logfields.Tag(tag), logfields.Error(err))
			continue
		}
		exported = append(exported, path)
	}
	return exported, nil
}
