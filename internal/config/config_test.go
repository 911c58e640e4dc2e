package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"wirecheck/internal/diag"
	"wirecheck/internal/field"
	"wirecheck/internal/lint"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
curve = "goldilocks"
level = "warning"
jobs = 3
max_diagnostics = 0
user_input_only = false

[rules]
disable = ["field-comparison", "LNT4006"]

[rules.signal-assignment]
lookahead = "function"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Curve != field.Goldilocks || cfg.Level != diag.SevWarning || cfg.Jobs != 3 {
		t.Errorf("scalars = %+v", cfg)
	}
	if cfg.MaxDiagnostics != 0 || cfg.UserInputOnly {
		t.Error("explicit zero and false values must override defaults")
	}
	if cfg.Lookahead != lint.LookaheadFunction {
		t.Error("lookahead not applied")
	}
	want := []string{"field-arithmetic", "field-comparison"}
	if got := cfg.DisabledNames(); !slices.Equal(got, want) {
		t.Errorf("disabled = %v, want %v", got, want)
	}
	if cfg.Enabled(diag.LintFieldComparison) || !cfg.Enabled(diag.LintShadowing) {
		t.Error("Enabled disagrees with Disabled")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "colour = \"red\"\n", "colour"},
		{"bad curve", "curve = \"secp256k1\"\n", "secp256k1"},
		{"unknown rule", "[rules]\ndisable = [\"no-such-rule\"]\n", "no-such-rule"},
		{"negative jobs", "jobs = -1\n", "jobs"},
		{"bad lookahead", "[rules.signal-assignment]\nlookahead = \"file\"\n", "lookahead"},
		{"syntax", "curve = \n", "parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}

	path := writeConfig(t, t.TempDir(), "colour = 1\n")
	if _, err := Load(path); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("unknown key error = %v", err)
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "level = \"error\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := Discover("", nested)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Level != diag.SevError || cfg.Path != filepath.Join(root, FileName) {
		t.Errorf("discovered %+v", cfg)
	}

	other := t.TempDir()
	explicit := writeConfig(t, other, "jobs = 2\n")
	cfg, err = Discover(explicit, nested)
	if err != nil || cfg.Jobs != 2 {
		t.Errorf("explicit path ignored: %+v %v", cfg, err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Curve != field.BN254 || cfg.Level != diag.SevInfo || !cfg.UserInputOnly || cfg.MaxDiagnostics != 1000 {
		t.Errorf("defaults = %+v", cfg)
	}
	if err := cfg.Disable("shadowing-declaration", "bogus"); err == nil {
		t.Error("bogus rule accepted")
	}
	if cfg.Enabled(diag.LintShadowing) {
		t.Error("valid rule in the same call should still be disabled")
	}
}
