// Package snapshot persists forecast run records as timestamped JSON files
// for audit and history.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/macrolabs/laborcast/models"
)

// Writer writes run snapshots into a data directory.
type Writer struct {
	dir    string
	logger zerolog.Logger
}

// NewWriter creates a Writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &Writer{
		dir:    dir,
		logger: log.With().Str("component", "snapshot").Logger(),
	}, nil
}

// Write serializes one run record and returns the file path. The filename
// carries the registry version and UTC timestamp so runs sort naturally.
func (w *Writer) Write(rec *models.RunRecord) (string, error) {
	name := fmt.Sprintf("forecast_%s_%s.json", rec.RegistryVersion, rec.CreatedAt.UTC().Format("20060102T150405Z"))
	path := filepath.Join(w.dir, name)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}

	w.logger.Debug().Str("path", path).Msg("Snapshot written")
	return path, nil
}

// Read loads a snapshot back into a run record.
func Read(path string) (*models.RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var rec models.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &rec, nil
}
