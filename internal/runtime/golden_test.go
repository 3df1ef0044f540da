package runtime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

// goldenCase is one entry in the testdata manifest: a script and either
// its expected output, or the error it must fail with (with the output
// produced before the failure).
type goldenCase struct {
	Name   string `yaml:"name"`
	Script string `yaml:"script"`
	Output string `yaml:"output,omitempty"`
	Error  string `yaml:"error,omitempty"`
}

type goldenManifest struct {
	Cases []goldenCase `yaml:"cases"`
}

func TestGolden(t *testing.T) {
	dir := filepath.Join("..", "..", "testdata")

	data, err := os.ReadFile(filepath.Join(dir, "golden.yaml"))
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}

	var manifest goldenManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("failed to parse manifest: %v", err)
	}
	if len(manifest.Cases) == 0 {
		t.Fatal("manifest holds no cases")
	}

	for _, tc := range manifest.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			source, err := os.ReadFile(filepath.Join(dir, tc.Script))
			if err != nil {
				t.Fatalf("failed to read script: %v", err)
			}

			got, runErr := runSource(string(source))

			if tc.Error != "" {
				if runErr == nil {
					t.Fatalf("expected error containing %q, got nil", tc.Error)
				}
				if !strings.Contains(runErr.Error(), tc.Error) {
					t.Errorf("expected error containing %q, got: %v", tc.Error, runErr)
				}
			} else if runErr != nil {
				t.Fatalf("runtime error: %v", runErr)
			}

			expected := strings.TrimRight(tc.Output, "\n")
			gotStr := strings.TrimRight(got, "\n")
			if gotStr != expected {
				reportDiff(t, expected, gotStr)
			}
		})
	}
}

// reportDiff logs a line-by-line comparison of expected and actual output.
func reportDiff(t *testing.T, expected, got string) {
	t.Helper()
	expectedLines := strings.Split(expected, "\n")
	gotLines := strings.Split(got, "\n")

	t.Errorf("output mismatch")
	maxLines := len(expectedLines)
	if len(gotLines) > maxLines {
		maxLines = len(gotLines)
	}
	for i := 0; i < maxLines; i++ {
		exp, g := "<missing>", "<missing>"
		if i < len(expectedLines) {
			exp = expectedLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		prefix := "  "
		if exp != g {
			prefix = "! "
		}
		t.Logf("%sline %d: expected=%q got=%q", prefix, i+1, exp, g)
	}
}
