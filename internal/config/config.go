// Package config loads wirecheck.toml and merges it with command-line
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"wirecheck/internal/diag"
	"wirecheck/internal/field"
	"wirecheck/internal/lint"
)

// FileName is the configuration file searched for next to the input.
const FileName = "wirecheck.toml"

// ErrUnknownKey is wrapped when the file contains keys wirecheck does not
// understand.
var ErrUnknownKey = errors.New("unknown configuration key")

type file struct {
	Curve          string    `toml:"curve"`
	Level          string    `toml:"level"`
	Jobs           *int      `toml:"jobs"`
	MaxDiagnostics *int      `toml:"max_diagnostics"`
	MaxVisits      *int      `toml:"max_visits"`
	UserInputOnly  *bool     `toml:"user_input_only"`
	Cache          *bool     `toml:"cache"`
	Rules          rulesFile `toml:"rules"`
}

type rulesFile struct {
	Disable          []string `toml:"disable"`
	SignalAssignment struct {
		Lookahead string `toml:"lookahead"`
	} `toml:"signal-assignment"`
}

// Config is the resolved configuration of one run.
type Config struct {
	Path           string // file the values came from, "" for defaults
	Curve          field.Curve
	Level          diag.Severity // minimum severity reported
	Jobs           int           // 0 = GOMAXPROCS
	MaxDiagnostics int           // per definition, 0 = unlimited
	MaxVisits      int           // dataflow cap, 0 = default
	UserInputOnly  bool          // skip definitions marked as library code
	Cache          bool
	Disabled       map[diag.Code]bool
	Lookahead      lint.Lookahead
}

func Default() *Config {
	return &Config{
		Curve:          field.DefaultCurve,
		Level:          diag.SevInfo,
		MaxDiagnostics: 1000,
		UserInputOnly:  true,
		Disabled:       map[diag.Code]bool{},
		Lookahead:      lint.LookaheadBlock,
	}
}

// Find walks up from startDir looking for wirecheck.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve %q: %w", startDir, err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load reads path on top of the defaults.
func Load(path string) (*Config, error) {
	var f file
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}
	cfg := Default()
	cfg.Path = path
	if err := cfg.apply(&f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the configuration governing startDir: the explicit path
// when given, else the nearest wirecheck.toml, else the defaults.
func Discover(explicit, startDir string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) apply(f *file) error {
	var errs []error
	if f.Curve != "" {
		curve, err := field.ParseCurve(f.Curve)
		errs = append(errs, err)
		c.Curve = curve
	}
	if f.Level != "" {
		lvl, err := diag.ParseSeverity(f.Level)
		errs = append(errs, err)
		c.Level = lvl
	}
	if f.Jobs != nil {
		if *f.Jobs < 0 {
			errs = append(errs, fmt.Errorf("jobs must be >= 0, got %d", *f.Jobs))
		}
		c.Jobs = *f.Jobs
	}
	if f.MaxDiagnostics != nil {
		if *f.MaxDiagnostics < 0 {
			errs = append(errs, fmt.Errorf("max_diagnostics must be >= 0, got %d", *f.MaxDiagnostics))
		}
		c.MaxDiagnostics = *f.MaxDiagnostics
	}
	if f.MaxVisits != nil {
		if *f.MaxVisits < 0 {
			errs = append(errs, fmt.Errorf("max_visits must be >= 0, got %d", *f.MaxVisits))
		}
		c.MaxVisits = *f.MaxVisits
	}
	if f.UserInputOnly != nil {
		c.UserInputOnly = *f.UserInputOnly
	}
	if f.Cache != nil {
		c.Cache = *f.Cache
	}
	errs = append(errs, c.Disable(f.Rules.Disable...))
	if la := f.Rules.SignalAssignment.Lookahead; la != "" {
		l, err := lint.ParseLookahead(la)
		errs = append(errs, err)
		c.Lookahead = l
	}
	return errors.Join(errs...)
}

// Disable turns rules off by name ("field-comparison") or ID ("LNT4007").
func (c *Config) Disable(rules ...string) error {
	var errs []error
	for _, r := range rules {
		code, ok := lookupRule(strings.TrimSpace(r))
		if !ok {
			errs = append(errs, fmt.Errorf("unknown rule %q", r))
			continue
		}
		c.Disabled[code] = true
	}
	return errors.Join(errs...)
}

// Enabled reports whether a finding code survives the rule settings.
func (c *Config) Enabled(code diag.Code) bool {
	return !c.Disabled[code]
}

// DisabledNames lists disabled rules by name, sorted.
func (c *Config) DisabledNames() []string {
	names := make([]string, 0, len(c.Disabled))
	for code := range c.Disabled {
		names = append(names, code.Name())
	}
	slices.Sort(names)
	return names
}

func lookupRule(s string) (diag.Code, bool) {
	if code, ok := diag.CodeByName(s); ok {
		return code, true
	}
	for _, code := range diag.Codes() {
		if strings.EqualFold(code.ID(), s) {
			return code, true
		}
	}
	return 0, false
}
