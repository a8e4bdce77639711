package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ansible-indent/internal/diff"
	"ansible-indent/internal/runner"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("parseFlags error: %v", err)
	}
	if cfg.root != defaultRoot {
		t.Fatalf("root got %q", cfg.root)
	}
	if cfg.format != "text" || cfg.color != "auto" || cfg.exclude != ".git" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.diffContext != 3 || cfg.diffNoPrefix || cfg.maxDiffBytes != 1<<20 {
		t.Fatalf("unexpected diff defaults: %+v", cfg)
	}
}

func TestRootCmdParseFlags(t *testing.T) {
	var cfg Config
	cmd := newRootCmd(&cfg, io.Discard, io.Discard)
	require.NoError(t, cmd.ParseFlags([]string{"--check", "-q", "--diff-context=1", "--follow-symlinks", "site"}))
	require.True(t, cfg.check)
	require.True(t, cfg.quiet)
	require.True(t, cfg.followSymlinks)
	require.Equal(t, 1, cfg.diffContext)
	require.Equal(t, []string{"site"}, cmd.Flags().Args())

	require.NoError(t, finish(&cfg, cmd.Flags().Args()))
	require.Equal(t, "site", cfg.root)
}

func TestBuildOptions(t *testing.T) {
	cfg, err := parseFlags([]string{"--diff", "--diff-context", "0", "--diff-no-prefix", "--max-diff-bytes", "512"})
	require.NoError(t, err)
	require.Equal(t, diff.Options{MaxBytes: 512, Context: 0, NoPrefix: true}, buildOptions(cfg))

	cfg, err = parseFlags(nil)
	require.NoError(t, err)
	require.Equal(t, diff.Options{MaxBytes: 1 << 20, Context: 3}, buildOptions(cfg))
}

func TestParseFlagsBasic(t *testing.T) {
	args := []string{"--diff", "--format", "json", "--color=off", "-v", "--exclude", ".git, vendor", "playbooks"}
	cfg, err := parseFlags(args)
	if err != nil {
		t.Fatalf("parseFlags error: %v", err)
	}
	if cfg.root != "playbooks" {
		t.Fatalf("root got %q", cfg.root)
	}
	if !cfg.diff || cfg.check || !cfg.verbose {
		t.Fatalf("bool flags: %+v", cfg)
	}
	if cfg.format != "json" || cfg.color != "off" {
		t.Fatalf("string flags: %+v", cfg)
	}
	if got := splitCSV(cfg.exclude); !reflect.DeepEqual(got, []string{".git", "vendor"}) {
		t.Fatalf("exclude got %v", got)
	}
}

func TestParseFlagsRejectsBadInput(t *testing.T) {
	for _, args := range [][]string{
		{"a", "b"},
		{"--format", "yaml"},
		{"--color", "sometimes"},
		{"--check", "--diff"},
		{"--no-such-flag"},
		{"--diff-context", "-1"},
		{"--max-diff-bytes", "-5"},
		{"--diff-context", "many"},
	} {
		if _, err := parseFlags(args); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestSelectMode(t *testing.T) {
	if m, _ := selectMode(Config{}); m != runner.ModeWrite {
		t.Fatalf("mode=%s", m)
	}
	if m, _ := selectMode(Config{check: true}); m != runner.ModeCheck {
		t.Fatalf("mode=%s", m)
	}
	if m, _ := selectMode(Config{diff: true}); m != runner.ModeDiff {
		t.Fatalf("mode=%s", m)
	}
	if _, err := selectMode(Config{check: true, diff: true}); err == nil {
		t.Fatalf("expected error on conflicting modes")
	}
}

func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "roles", "app", "tasks"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "roles", "app", "tasks", "main.yml"),
		[]byte("- name: copy\nansible.builtin.copy:\n  dest: /etc/app\n        register: out\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "site.yaml"),
		[]byte("- hosts: all\n  roles:\n    - app\n"), 0o644))
	return root
}

func TestExecuteMissingRoot(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute([]string{"--color=off", filepath.Join(t.TempDir(), "missing")}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "search root not found")
	require.Empty(t, stdout.String())
}

func TestExecuteFixesTree(t *testing.T) {
	root := writeTree(t)
	var stdout, stderr bytes.Buffer
	code := execute([]string{"--color=off", root}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	require.Contains(t, out, "Found 2 YAML files")
	require.Contains(t, out, "Processing: roles/app/tasks/main.yml\n  fixed (3 lines)\n")
	require.Contains(t, out, "Processing: site.yaml\n  no changes needed\n")
	require.Contains(t, out, "Fixed 1 files\n")

	b, err := os.ReadFile(filepath.Join(root, "roles", "app", "tasks", "main.yml"))
	require.NoError(t, err)
	require.Equal(t, "- name: copy\n  ansible.builtin.copy:\n    dest: /etc/app\n  register: out\n", string(b))

	stdout.Reset()
	require.Equal(t, 0, execute([]string{"--color=off", root}, &stdout, &stderr))
	require.Contains(t, stdout.String(), "Fixed 0 files\n")
}

func TestExecuteCheckExitsNonZeroWithoutWriting(t *testing.T) {
	root := writeTree(t)
	path := filepath.Join(root, "roles", "app", "tasks", "main.yml")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 1, execute([]string{"--check", "--color=off", root}, &stdout, &stderr))
	require.Contains(t, stdout.String(), "would fix (3 lines)")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestExecuteDiffJSON(t *testing.T) {
	root := writeTree(t)
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, execute([]string{"--diff", "--format=json", root}, &stdout, &stderr))

	var got struct {
		Mode  string `json:"mode"`
		Files []struct {
			Path    string `json:"path"`
			Changed bool   `json:"changed"`
			Diff    string `json:"diff"`
		} `json:"files"`
		Changed int `json:"changed"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Equal(t, "diff", got.Mode)
	require.Equal(t, 1, got.Changed)
	require.Len(t, got.Files, 2)
	require.Equal(t, "roles/app/tasks/main.yml", got.Files[0].Path)
	require.True(t, strings.Contains(got.Files[0].Diff, "+  ansible.builtin.copy:"))
}

func TestExecuteDiffFlags(t *testing.T) {
	root := writeTree(t)
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, execute([]string{"--diff", "--diff-no-prefix", "--color=off", root}, &stdout, &stderr), stderr.String())
	require.Contains(t, stdout.String(), "--- roles/app/tasks/main.yml\n+++ roles/app/tasks/main.yml\n")

	stdout.Reset()
	require.Equal(t, 0, execute([]string{"--diff", "--max-diff-bytes=8", "--color=off", root}, &stdout, &stderr))
	require.Contains(t, stdout.String(), "  would fix (3 lines)\n  diff omitted: file exceeds --max-diff-bytes\n")
	require.NotContains(t, stdout.String(), "+  ansible.builtin.copy:")
}

func TestExecuteVerboseLogsEdits(t *testing.T) {
	root := writeTree(t)
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, execute([]string{"-q", "-v", "--color=off", root}, &stdout, &stderr))
	require.Contains(t, stderr.String(), "reindent")
	require.NotContains(t, stdout.String(), "site.yaml", "quiet hides unchanged files")
}

func TestExecuteBadFlagsExitTwo(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 2, execute([]string{"--check", "--diff", t.TempDir()}, &stdout, &stderr))
	require.Contains(t, stderr.String(), "mutually exclusive")
}
