package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// ReadYAML decodes a YAML fixture into v, failing the test on error.
// Unknown fields are rejected so typos in fixtures do not pass silently.
func ReadYAML(t testing.TB, path string, v any) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		t.Fatalf("decode fixture %s: %v", filepath.Base(path), err)
	}
}

// Glob returns the files matching pattern, failing the test if there are
// none.
func Glob(t testing.TB, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(pattern)
	if err != nil {
		t.Fatalf("glob %s: %v", pattern, err)
	}
	if len(matches) == 0 {
		t.Fatalf("no files match %s", pattern)
	}
	return matches
}
