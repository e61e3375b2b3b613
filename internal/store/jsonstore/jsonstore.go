package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/transmit/internal/model"
)

// JSON-backed storage for the file source. Single file, human-readable, portable.
// No locking; the Memory store serialises access within one process.

// DefaultFileName is used when no data file is configured.
const DefaultFileName = "transmittals.json"

// DataPath resolves p, falling back to DefaultFileName in the working directory.
func DataPath(p string) (string, error) {
	if p != "" {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	return filepath.Join(wd, DefaultFileName), nil
}

// Load reads the transmittals stored at p. A missing file is an empty collection.
func Load(p string) ([]model.Transmittal, error) {
	p, err := DataPath(p)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Transmittal{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var items []model.Transmittal
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return items, nil
}

// Save writes items to p, replacing its contents.
func Save(p string, items []model.Transmittal) error {
	p, err := DataPath(p)
	if err != nil {
		return err
	}
	if items == nil {
		items = []model.Transmittal{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(p); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
