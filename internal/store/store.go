// Package store persists the latest snapshot and the rolling run history as
// JSON files under one data directory.
package store

import (
    "bytes"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"

    "marketdash/internal/aggregate"
)

const (
    LatestFile  = "latest.json"
    HistoryFile = "history.json"
    // DefaultHistoryLimit is the number of runs kept in the history file.
    DefaultHistoryLimit = 100
)

type Store struct {
    Dir   string
    Limit int
}

func New(dir string, limit int) *Store {
    if limit <= 0 { limit = DefaultHistoryLimit }
    return &Store{Dir: dir, Limit: limit}
}

func (s *Store) LatestPath() string  { return filepath.Join(s.Dir, LatestFile) }
func (s *Store) HistoryPath() string { return filepath.Join(s.Dir, HistoryFile) }

// SaveSnapshot overwrites the latest snapshot.
func (s *Store) SaveSnapshot(snap aggregate.Snapshot) error {
    if err := os.MkdirAll(s.Dir, 0o755); err != nil {
        return fmt.Errorf("create data dir: %w", err)
    }
    return writeJSON(s.LatestPath(), snap)
}

// LoadHistory returns the recorded runs, oldest first. A missing file or one
// that is not a JSON list reads as empty history.
func (s *Store) LoadHistory() ([]aggregate.Entry, error) {
    b, err := os.ReadFile(s.HistoryPath())
    if errors.Is(err, os.ErrNotExist) {
        return []aggregate.Entry{}, nil
    }
    if err != nil {
        return nil, fmt.Errorf("read history: %w", err)
    }
    var out []aggregate.Entry
    if err := json.Unmarshal(b, &out); err != nil || out == nil {
        return []aggregate.Entry{}, nil
    }
    return out, nil
}

// AppendHistory adds e and keeps only the most recent Limit entries.
func (s *Store) AppendHistory(e aggregate.Entry) ([]aggregate.Entry, error) {
    hist, err := s.LoadHistory()
    if err != nil {
        return nil, err
    }
    hist = append(hist, e)
    if len(hist) > s.Limit {
        hist = hist[len(hist)-s.Limit:]
    }
    if err := os.MkdirAll(s.Dir, 0o755); err != nil {
        return nil, fmt.Errorf("create data dir: %w", err)
    }
    if err := writeJSON(s.HistoryPath(), hist); err != nil {
        return nil, err
    }
    return hist, nil
}

// writeJSON indents with two spaces and leaves non-ASCII and HTML characters
// unescaped.
func writeJSON(path string, v any) error {
    var buf bytes.Buffer
    enc := json.NewEncoder(&buf)
    enc.SetEscapeHTML(false)
    enc.SetIndent("", "  ")
    if err := enc.Encode(v); err != nil {
        return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
    }
    tmp := path + ".tmp"
    if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
        return fmt.Errorf("write %s: %w", filepath.Base(path), err)
    }
    if err := os.Rename(tmp, path); err != nil {
        return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
    }
    return nil
}
