// Package history manages the storage and retrieval of saved comparison results.
package history

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/CaptShanks/nodeprism/internal/compare"
	"github.com/CaptShanks/nodeprism/internal/report"
)

const (
	// CommandCompare is the only command recorded in history filenames
	CommandCompare = "compare"

	// StatusIdentical indicates both documents had the same nodes and fields
	StatusIdentical = "identical"
	// StatusDiffers indicates at least one node was missing or differed
	StatusDiffers = "differs"

	// DefaultMaxFiles is how many results are kept when no limit is configured
	DefaultMaxFiles = 50

	fileExt         = ".json"
	timestampLayout = "2006-01-02_15-04-05"

	// maxLabelPart is the rune length kept of each model name in a label
	maxLabelPart = 30
	// maxSeq bounds the suffixes tried for results saved in the same second
	maxSeq = 1000
)

// Entry represents a history file entry
type Entry struct {
	Path      string
	Timestamp time.Time
	Label     string // <model1>-vs-<model2>
	Command   string
	Status    string // identical, differs
	Seq       int    // 1, or the _<n> suffix of results saved in the same second
	Filename  string
}

// Store reads and writes history files in Dir
type Store struct {
	Dir string
	// MaxFiles bounds the number of kept files; 0 keeps everything
	MaxFiles int
	Logger   log.Logger
}

// NewStore returns a store rooted at dir
func NewStore(dir string, maxFiles int, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Store{Dir: dir, MaxFiles: maxFiles, Logger: logger}
}

// Label builds the history label for a pair of input files
func Label(file1, file2 string) string {
	return shorten(sanitizeLabel(report.Stem(file1))) + "-vs-" + shorten(sanitizeLabel(report.Stem(file2)))
}

// shorten keeps filenames reasonable
func shorten(name string) string {
	if r := []rune(name); len(r) > maxLabelPart {
		return string(r[:maxLabelPart])
	}
	return name
}

// sanitizeLabel makes a model name safe for filenames
// Underscores MUST be replaced since they're used as filename delimiters
func sanitizeLabel(name string) string {
	replacer := strings.NewReplacer(
		"_", "-",
		" ", "-",
		"/", "-",
		"\\", "-",
		":", "-",
		".", "-",
	)
	name = replacer.Replace(name)

	if name == "" {
		name = "model"
	}
	return name
}

// StatusOf returns the history status for a result
func StatusOf(res *compare.Result) string {
	if res.Identical() {
		return StatusIdentical
	}
	return StatusDiffers
}

// GenerateFilename creates a filename for a history entry
// Format: YYYY-MM-DD_HH-MM-SS_<label>_compare_<status>.json
func GenerateFilename(now time.Time, label, status string) string {
	return generateFilename(now, label, status, 1)
}

// generateFilename appends _<seq> before the extension when seq > 1
func generateFilename(now time.Time, label, status string, seq int) string {
	suffix := ""
	if seq > 1 {
		suffix = "_" + strconv.Itoa(seq)
	}
	return fmt.Sprintf("%s_%s_%s_%s%s%s",
		now.Format(timestampLayout),
		sanitizeLabel(label),
		CommandCompare,
		status,
		suffix,
		fileExt,
	)
}

// EnsureDir creates the history directory if it doesn't exist
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	return nil
}

// Save writes res as a new history file and returns its path
func (s *Store) Save(label string, res *compare.Result, now time.Time) (string, error) {
	if err := s.EnsureDir(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, res); err != nil {
		return "", err
	}

	f, path, err := s.create(label, StatusOf(res), now)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write history file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write history file: %w", err)
	}

	level.Debug(s.Logger).Log("msg", "saved comparison to history", "path", path)
	return path, nil
}

// create opens a new history file, never replacing an existing one. Results
// saved within the same second get a numeric suffix.
func (s *Store) create(label, status string, now time.Time) (*os.File, string, error) {
	for seq := 1; seq <= maxSeq; seq++ {
		path := filepath.Join(s.Dir, generateFilename(now, label, status, seq))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to create history file: %w", err)
		}
		return f, path, nil
	}
	return nil, "", fmt.Errorf("failed to create history file: %d results already saved at %s", maxSeq, now.Format(timestampLayout))
}

// Load reads a saved result
func (s *Store) Load(path string) (*compare.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()
	return report.ReadJSON(f)
}

// List returns all history entries, sorted by timestamp (newest first).
// A non-empty filterStatus keeps only entries with that status.
func (s *Store) List(filterStatus string) ([]Entry, error) {
	if _, err := os.Stat(s.Dir); os.IsNotExist(err) {
		return []Entry{}, nil
	}

	files, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), fileExt) {
			continue
		}

		entry, err := parseFilename(f.Name())
		if err != nil {
			continue // Skip files that don't match our format
		}

		entry.Path = filepath.Join(s.Dir, f.Name())
		entry.Filename = f.Name()

		if filterStatus != "" && entry.Status != filterStatus {
			continue
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			if entries[i].Seq != entries[j].Seq {
				return entries[i].Seq > entries[j].Seq
			}
			return entries[i].Filename > entries[j].Filename
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	return entries, nil
}

// Resolve turns a 1-based index (1 = most recent) or a filename into a path
func (s *Store) Resolve(target string) (string, error) {
	if isNumeric(target) {
		index, err := strconv.Atoi(target)
		if err != nil || index < 1 {
			return "", fmt.Errorf("index must be 1 or greater")
		}
		entries, err := s.List("")
		if err != nil {
			return "", err
		}
		if index > len(entries) {
			return "", fmt.Errorf("index %d out of range (only %d entries)", index, len(entries))
		}
		return entries[index-1].Path, nil
	}
	return filepath.Join(s.Dir, filepath.Base(target)), nil
}

// Cleanup removes the oldest files beyond MaxFiles and returns how many were deleted
func (s *Store) Cleanup() (int, error) {
	if s.MaxFiles <= 0 {
		return 0, nil
	}
	entries, err := s.List("")
	if err != nil {
		return 0, err
	}
	if len(entries) <= s.MaxFiles {
		return 0, nil
	}

	deleted := 0
	for _, entry := range entries[s.MaxFiles:] {
		if err := os.Remove(entry.Path); err != nil {
			level.Warn(s.Logger).Log("msg", "failed to delete old history file", "path", entry.Path, "err", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// Clear removes every history file and returns how many were deleted
func (s *Store) Clear() (int, error) {
	entries, err := s.List("")
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, entry := range entries {
		if err := os.Remove(entry.Path); err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", entry.Filename, err)
		}
		deleted++
	}
	return deleted, nil
}

// EntryFor describes the history file at path from its filename
func EntryFor(path string) (Entry, error) {
	entry, err := parseFilename(filepath.Base(path))
	if err != nil {
		return Entry{}, err
	}
	entry.Path = path
	entry.Filename = filepath.Base(path)
	return entry, nil
}

// parseFilename parses a history filename into an Entry
// Format: YYYY-MM-DD_HH-MM-SS_<label>_compare_<status>[_<seq>].json
func parseFilename(filename string) (Entry, error) {
	base := strings.TrimSuffix(filename, fileExt)
	parts := strings.Split(base, "_")

	seq := 1
	switch len(parts) {
	case 5:
	case 6:
		n, err := strconv.Atoi(parts[5])
		if !isNumeric(parts[5]) || err != nil || n < 2 {
			return Entry{}, fmt.Errorf("invalid sequence: %s", parts[5])
		}
		seq = n
	default:
		return Entry{}, fmt.Errorf("invalid filename format")
	}

	timestamp, err := time.ParseInLocation(timestampLayout, parts[0]+"_"+parts[1], time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	if parts[3] != CommandCompare {
		return Entry{}, fmt.Errorf("unknown command: %s", parts[3])
	}
	switch parts[4] {
	case StatusIdentical, StatusDiffers:
	default:
		return Entry{}, fmt.Errorf("unknown status: %s", parts[4])
	}

	return Entry{
		Timestamp: timestamp,
		Label:     parts[2],
		Command:   parts[3],
		Status:    parts[4],
		Seq:       seq,
	}, nil
}

// FormatEntry formats an entry for display
func FormatEntry(e Entry) string {
	status := ""
	switch e.Status {
	case StatusIdentical:
		status = "[IDENTICAL]"
	case StatusDiffers:
		status = "[DIFFERS]"
	}

	return fmt.Sprintf("%s  %-40s  %-12s",
		e.Timestamp.Format("2006-01-02 15:04:05"),
		TruncateLabel(e.Label, 40),
		status,
	)
}

// TruncateLabel shortens a label to max characters with a trailing ellipsis
func TruncateLabel(label string, max int) string {
	if label == "" {
		return "-"
	}
	r := []rune(label)
	if len(r) <= max || max <= 3 {
		return label
	}
	return string(r[:max-3]) + "..."
}

// isNumeric checks if a string is a positive integer
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
