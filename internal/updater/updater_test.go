package updater

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

func fakeDetect(version string, calls *int) DetectFunc {
	return func(slug string) (*selfupdate.Release, bool, error) {
		*calls++
		return &selfupdate.Release{Version: semver.MustParse(version)}, true, nil
	}
}

func TestCurlFallbackMessage(t *testing.T) {
	msg := CurlFallbackMessage(os.ErrPermission)
	if msg == "" {
		t.Error("CurlFallbackMessage should not return empty string")
	}
	if !strings.Contains(msg, "Self-update failed") {
		t.Errorf("expected message to contain 'Self-update failed', got: %s", msg)
	}
	if !strings.Contains(msg, "curl") {
		t.Errorf("expected message to contain 'curl', got: %s", msg)
	}
	if !strings.Contains(msg, "install.sh") {
		t.Errorf("expected message to contain 'install.sh', got: %s", msg)
	}
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"1.2.0", "1.1.9", true},
		{"v1.2.0", "1.2.0", false},
		{"1.2.0", "v1.3.0", false},
	}
	for _, tt := range tests {
		got, err := IsNewer(tt.latest, tt.current)
		if err != nil {
			t.Fatalf("IsNewer(%q, %q) failed: %v", tt.latest, tt.current, err)
		}
		if got != tt.want {
			t.Errorf("IsNewer(%q, %q) = %v, want %v", tt.latest, tt.current, got, tt.want)
		}
	}
	if _, err := IsNewer("not-a-version", "1.0.0"); err == nil {
		t.Error("expected error for invalid version")
	}
}

func TestCheckLatest(t *testing.T) {
	calls := 0
	c := &Checker{CurrentVersion: "0.1.0", Detect: fakeDetect("0.2.0", &calls)}

	latest, hasUpdate, err := c.CheckLatest()
	if err != nil {
		t.Fatalf("CheckLatest failed: %v", err)
	}
	if latest != "0.2.0" || !hasUpdate {
		t.Errorf("CheckLatest() = %q, %v; want 0.2.0, true", latest, hasUpdate)
	}
}

func TestCheckLatestNotFound(t *testing.T) {
	c := &Checker{CurrentVersion: "0.1.0", Detect: func(string) (*selfupdate.Release, bool, error) {
		return nil, false, nil
	}}
	latest, hasUpdate, err := c.CheckLatest()
	if err != nil || latest != "" || hasUpdate {
		t.Errorf("CheckLatest() = %q, %v, %v; want empty result", latest, hasUpdate, err)
	}
}

func TestCheckLatestWithCache(t *testing.T) {
	calls := 0
	dir := t.TempDir()
	c := &Checker{CurrentVersion: "0.1.0", CacheDir: dir, IntervalDays: 7, Detect: fakeDetect("0.3.0", &calls)}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, _, err := c.CheckLatestWithCache(now); err != nil {
		t.Fatalf("first check failed: %v", err)
	}
	latest, hasUpdate, err := c.CheckLatestWithCache(now.Add(24 * time.Hour))
	if err != nil {
		t.Fatalf("cached check failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected cached result within interval, detect called %d times", calls)
	}
	if latest != "0.3.0" || !hasUpdate {
		t.Errorf("cached result = %q, %v", latest, hasUpdate)
	}

	if _, _, err := c.CheckLatestWithCache(now.Add(8 * 24 * time.Hour)); err != nil {
		t.Fatalf("expired check failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected a fresh lookup after the interval, detect called %d times", calls)
	}
	if _, err := os.Stat(filepath.Join(dir, cacheFile)); err != nil {
		t.Errorf("cache file not written: %v", err)
	}
}

func TestCheckLatestWithCacheError(t *testing.T) {
	c := &Checker{CurrentVersion: "0.1.0", CacheDir: t.TempDir(), Detect: func(string) (*selfupdate.Release, bool, error) {
		return nil, false, errors.New("rate limited")
	}}
	if _, _, err := c.CheckLatestWithCache(time.Now()); err == nil {
		t.Error("expected error to propagate")
	}
}

func TestCachePath(t *testing.T) {
	c := &Checker{CacheDir: filepath.Join(t.TempDir(), "nested")}
	path, err := c.cachePath()
	if err != nil {
		t.Fatalf("cachePath failed: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("cachePath should return absolute path, got: %s", path)
	}

	if _, err := (&Checker{}).cachePath(); err == nil {
		t.Error("expected error without cache dir")
	}
}
