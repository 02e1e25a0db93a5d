package toolchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SDKVersion returns the version reported by `dotnet --version`.
func (d *Dotnet) SDKVersion(ctx context.Context) (*semver.Version, error) {
	out, err := d.run(ctx, "--version")
	if err != nil {
		return nil, err
	}
	v, err := parseSemver(firstLine(out))
	if err != nil {
		return nil, fmt.Errorf("parsing dotnet SDK version %q: %w", strings.TrimSpace(out), err)
	}
	return v, nil
}

// CheckMinimum returns an error when current is older than minimum.
// An empty minimum disables the check.
func CheckMinimum(current *semver.Version, minimum string) error {
	if minimum == "" {
		return nil
	}
	floor, err := parseSemver(minimum)
	if err != nil {
		return fmt.Errorf("parsing minimum SDK version %q: %w", minimum, err)
	}
	if current.LessThan(floor) {
		return fmt.Errorf("dotnet SDK %s is older than the required %s", current, floor)
	}
	return nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	return semver.NewVersion(version)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
