package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"listforge/internal/catalog"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	stateDir   string
	logDir     string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	return setupCLITestEnvWithServices(t, "http://content.invalid", "")
}

func setupCLITestEnvWithServices(t *testing.T, contentURL, validationURL string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		stateDir:   filepath.Join(base, "state"),
		logDir:     filepath.Join(base, "logs"),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\nstate_dir = '%s'\nlog_dir = '%s'\n\n", env.stateDir, env.logDir)
	fmt.Fprintf(&b, "[content]\nbase_url = '%s'\n\n", contentURL)
	if validationURL != "" {
		fmt.Fprintf(&b, "[validation]\nbase_url = '%s'\n\n", validationURL)
	}
	b.WriteString("[logging]\nformat = 'json'\nlevel = 'error'\n")

	if err := os.WriteFile(env.configPath, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append(args, "--config", env.configPath))
	err := cmd.Execute()
	return out.String(), err
}

func writeSelectionFile(t *testing.T, dir string, sel *catalog.Selection) string {
	t.Helper()

	data, err := json.Marshal(sel)
	if err != nil {
		t.Fatalf("marshal selection: %v", err)
	}
	path := filepath.Join(dir, "selection.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write selection: %v", err)
	}
	return path
}

func testSelection() *catalog.Selection {
	return &catalog.Selection{
		Manufacturer: "Acme",
		ListingType:  catalog.ListingIndividual,
		Series:       []catalog.Series{{ID: 1, Name: "Alpha"}},
		Models: []catalog.Model{
			{ID: 1, Name: "A-100", SeriesID: 1},
			{ID: 2, Name: "A-200", SeriesID: 1},
		},
	}
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}
