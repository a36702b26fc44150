package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig writes a config file whose paths all live under base and
// returns its path.
func writeTestConfig(t *testing.T, base string) string {
	t.Helper()

	content := fmt.Sprintf(`[paths]
work_dir = %q
output_dir = %q
log_dir = %q

[languages]
target = "km"
`, filepath.Join(base, "work"), filepath.Join(base, "out"), filepath.Join(base, "logs"))

	path := filepath.Join(base, "dubforge.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
