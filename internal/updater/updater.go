// Package updater checks GitHub releases for newer nodeprism builds and
// replaces the running binary on request.
package updater

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

const (
	repoSlug         = "CaptShanks/nodeprism"
	installScriptURL = "https://raw.githubusercontent.com/CaptShanks/nodeprism/main/install.sh"

	// DefaultIntervalDays is used when no positive interval is configured
	DefaultIntervalDays = 7

	cacheFile = "update-check"
)

// DetectFunc looks up the latest release; replaced in tests
type DetectFunc func(slug string) (*selfupdate.Release, bool, error)

// Checker performs update checks, caching results in CacheDir
type Checker struct {
	CurrentVersion string
	CacheDir       string
	IntervalDays   int
	Detect         DetectFunc
}

// NewChecker returns a checker for the running version
func NewChecker(currentVersion, cacheDir string, intervalDays int) *Checker {
	return &Checker{
		CurrentVersion: currentVersion,
		CacheDir:       cacheDir,
		IntervalDays:   intervalDays,
		Detect:         selfupdate.DetectLatest,
	}
}

// CheckLatest fetches the latest release from GitHub and compares with the current version.
// Returns (latestVersion, hasUpdate, err). Never blocks or fails the main command on errors.
func (c *Checker) CheckLatest() (latestVersion string, hasUpdate bool, err error) {
	detect := c.Detect
	if detect == nil {
		detect = selfupdate.DetectLatest
	}
	latest, found, err := detect(repoSlug)
	if err != nil || !found {
		return "", false, err
	}
	latestVersion = strings.TrimPrefix(latest.Version.String(), "v")
	hasUpdate, err = IsNewer(latestVersion, c.CurrentVersion)
	if err != nil {
		return latestVersion, false, err
	}
	return latestVersion, hasUpdate, nil
}

// IsNewer reports whether latest is a higher semantic version than current
func IsNewer(latest, current string) (bool, error) {
	latestSemver, err := semver.Parse(normalizeVersion(latest))
	if err != nil {
		return false, err
	}
	currentSemver, err := semver.Parse(normalizeVersion(current))
	if err != nil {
		return false, err
	}
	return latestSemver.GT(currentSemver), nil
}

// Upgrade replaces the current binary with the latest release.
// On success returns the new version. On failure returns an error suitable for displaying
// the curl fallback command.
func Upgrade(currentVersion string) (newVersion string, err error) {
	v, err := semver.Parse(normalizeVersion(currentVersion))
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", currentVersion, err)
	}

	latest, err := selfupdate.UpdateSelf(v, repoSlug)
	if err != nil {
		return "", err
	}
	return latest.Version.String(), nil
}

// CurlFallbackMessage returns the message to display when self-update fails.
func CurlFallbackMessage(reason error) string {
	return fmt.Sprintf(`Self-update failed: %v
To upgrade manually, run:
  curl -sSfL %s | sh`, reason, installScriptURL)
}

func normalizeVersion(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "v")
}

// updateCache holds cached update check results.
type updateCache struct {
	LastCheckEpoch int64  `json:"last_check_epoch"`
	LatestVersion  string `json:"latest_version,omitempty"`
	HasUpdate      bool   `json:"has_update"`
}

// cachePath returns the path to the update check cache file.
func (c *Checker) cachePath() (string, error) {
	if c.CacheDir == "" {
		return "", fmt.Errorf("no cache directory configured")
	}
	if err := os.MkdirAll(c.CacheDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(c.CacheDir, cacheFile), nil
}

// CheckLatestWithCache checks for updates, but only if the cache interval has elapsed.
// Returns (latestVersion, hasUpdate, err). If within interval, uses cached result.
func (c *Checker) CheckLatestWithCache(now time.Time) (latestVersion string, hasUpdate bool, err error) {
	intervalDays := c.IntervalDays
	if intervalDays <= 0 {
		intervalDays = DefaultIntervalDays
	}
	intervalSec := int64(intervalDays) * 24 * 60 * 60

	path, err := c.cachePath()
	if err != nil {
		return c.CheckLatest()
	}

	if data, err := os.ReadFile(path); err == nil {
		var cache updateCache
		if json.Unmarshal(data, &cache) == nil {
			if now.Unix()-cache.LastCheckEpoch < intervalSec {
				return cache.LatestVersion, cache.HasUpdate, nil
			}
		}
	}

	latest, hasUpdate, err := c.CheckLatest()
	if err != nil {
		return "", false, err
	}

	cache := updateCache{
		LastCheckEpoch: now.Unix(),
		LatestVersion:  latest,
		HasUpdate:      hasUpdate,
	}
	if data, err := json.Marshal(cache); err == nil {
		_ = os.WriteFile(path, data, 0644)
	}

	return latest, hasUpdate, nil
}
