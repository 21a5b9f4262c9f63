package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Entry describes one dataset in the manifest file. File is relative to the
// data directory; Columns names the fixed-width columns in order since the
// data files carry no header row.
type Entry struct {
	Name    string   `json:"name"`
	File    string   `json:"file"`
	Columns []string `json:"columns"`
}

// Load reads and validates the dataset manifest.
func Load(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("manifest %s: entry %d: name required", path, i)
		}
		if entry.File == "" {
			return nil, fmt.Errorf("manifest %s: dataset %q: file required", path, entry.Name)
		}
		if len(entry.Columns) == 0 {
			return nil, fmt.Errorf("manifest %s: dataset %q: columns required", path, entry.Name)
		}
		for _, col := range entry.Columns {
			if col == "" {
				return nil, fmt.Errorf("manifest %s: dataset %q: empty column name", path, entry.Name)
			}
		}
		if seen[entry.Name] {
			return nil, fmt.Errorf("manifest %s: duplicate dataset %q", path, entry.Name)
		}
		seen[entry.Name] = true
	}
	return entries, nil
}

// Resolve returns the absolute path of an entry's data file under dataDir.
func (e Entry) Resolve(dataDir string) string {
	if filepath.IsAbs(e.File) {
		return e.File
	}
	return filepath.Join(dataDir, e.File)
}
