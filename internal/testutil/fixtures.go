// Package testutil provides shared fixtures and helpers for bgplab
// tests. Redis-backed helpers live behind the integration build tag.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleLabYAML is a minimal valid lab definition file body.
const SampleLabYAML = `name: testlab
location: westus2
ip_address: 198.51.100.7
subnet_count: 4
name_prefix: testlab
alias: alice
`

// WriteLabFile writes a lab definition into a temp dir and returns its
// path. The file is cleaned up with the test.
func WriteLabFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lab.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing lab file: %v", err)
	}
	return path
}
