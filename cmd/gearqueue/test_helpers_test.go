package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"gearqueue/internal/config"
	"gearqueue/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	dbPath     string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		dbPath:     testsupport.DBPath(cfg),
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()

	names := make([]string, 0, len(cfg.Queue.Options))
	for name := range cfg.Queue.Options {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "[queue]\nmodule = %q\n\n[queue.options]\n", cfg.Queue.Module)
	for _, name := range names {
		fmt.Fprintf(&b, "%s = %q\n", name, cfg.Queue.Options[name])
	}
	fmt.Fprintf(&b, "\n[logging]\nlevel = %q\nformat = %q\noutputs = [", cfg.Logging.Level, cfg.Logging.Format)
	for i, output := range cfg.Logging.Outputs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", output)
	}
	b.WriteString("]\n")

	testsupport.WriteFile(t, path, []byte(b.String()))
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
