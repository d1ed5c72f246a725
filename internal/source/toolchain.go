package source

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/typdocs/internal/errors"
)

var (
	ciToolchainActionRe = regexp.MustCompile(`rust-toolchain@(\d+\.\d+(?:\.\d+)?)`)
	ciToolchainFieldRe  = regexp.MustCompile(`toolchain:\s*"?(\d+\.\d+(?:\.\d+)?)"?`)
	cargoRustVersionRe  = regexp.MustCompile(`rust-version\s*=\s*"(\d+\.\d+(?:\.\d+)?)"`)
)

// PinnedRustVersion extracts the Rust version a checkout was built against,
// preferring the CI workflow over the Cargo.toml rust-version field. Returns
// "" when no pin is found.
func PinnedRustVersion(repoDir string) string {
	ciPath := filepath.Join(repoDir, ".github", "workflows", "ci.yml")
	if content, err := os.ReadFile(ciPath); err == nil {
		match := ciToolchainActionRe.FindSubmatch(content)
		if match == nil {
			match = ciToolchainFieldRe.FindSubmatch(content)
		}
		if match != nil {
			version := string(match[1])
			slog.Info("Found pinned Rust version from CI workflow", slog.String("rust_version", version))
			return version
		}
	}

	cargoPath := filepath.Join(repoDir, "Cargo.toml")
	if content, err := os.ReadFile(cargoPath); err == nil {
		if match := cargoRustVersionRe.FindSubmatch(content); match != nil {
			version := string(match[1])
			slog.Info("Found pinned Rust version from Cargo.toml", slog.String("rust_version", version))
			return version
		}
	}

	return ""
}

// ToolchainInstalled reports whether rustup already has a toolchain whose name
// starts with version.
func ToolchainInstalled(ctx context.Context, version string) bool {
	if version == "" {
		return false
	}
	out, err := exec.CommandContext(ctx, "rustup", "toolchain", "list").Output()
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, version) {
			return true
		}
	}
	return false
}

// InstallToolchain installs a toolchain with the minimal profile. The
// "stable" toolchain is assumed present and never managed.
func InstallToolchain(ctx context.Context, version string) error {
	return manageToolchain(ctx, version, "install", "--profile", "minimal", "--no-self-update")
}

// UninstallToolchain removes a toolchain installed by InstallToolchain.
func UninstallToolchain(ctx context.Context, version string) error {
	return manageToolchain(ctx, version, "uninstall")
}

func manageToolchain(ctx context.Context, version, action string, extra ...string) error {
	if version == "" || version == "stable" {
		return nil
	}

	args := append([]string{"toolchain", action, version}, extra...)
	slog.Info("Running rustup", slog.String("action", action), slog.String("rust_version", version))

	cmd := exec.CommandContext(ctx, "rustup", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.WrapError(err, errors.CategoryToolchain, "rustup "+action+" failed").
			WithContext("rust_version", version)
	}
	return nil
}
