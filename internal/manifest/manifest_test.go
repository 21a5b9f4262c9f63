package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datasets.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `[
  {"name": "traffic", "file": "traffic.dat", "columns": ["vehicles", "time"]},
  {"name": "salary", "file": "sub/salary.dat", "columns": ["years", "salary"]}
]`)

	entries, err := Load(path)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "traffic" || len(entries[0].Columns) != 2 {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}

	resolved := entries[1].Resolve("/srv/data")
	if resolved != filepath.Join("/srv/data", "sub", "salary.dat") {
		t.Fatalf("unexpected resolved path: %s", resolved)
	}
}

func TestLoadManifestRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"missing name":    `[{"file": "a.dat", "columns": ["x"]}]`,
		"missing file":    `[{"name": "a", "columns": ["x"]}]`,
		"missing columns": `[{"name": "a", "file": "a.dat"}]`,
		"empty column":    `[{"name": "a", "file": "a.dat", "columns": [""]}]`,
		"duplicate name":  `[{"name": "a", "file": "a.dat", "columns": ["x"]}, {"name": "a", "file": "b.dat", "columns": ["y"]}]`,
		"bad json":        `{"name": "a"`,
	}

	for label, content := range cases {
		if _, err := Load(writeManifest(t, content)); err == nil {
			t.Fatalf("%s: expected error", label)
		}
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing manifest")
	}
}
