package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"wirecheck/internal/config"
	"wirecheck/internal/diag"
	"wirecheck/internal/diagfmt"
	"wirecheck/internal/driver"
	"wirecheck/internal/field"
	"wirecheck/internal/lint"
	"wirecheck/internal/observ"
	"wirecheck/internal/trace"
	"wirecheck/internal/ui"
	"wirecheck/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <program.json|program.msgpack>",
	Short: "Analyze a parsed circuit program",
	Long: `Analyze every template and function of a parsed circuit program and report findings.
Exits with status 1 when a warning or error survives filtering.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	checkCmd.Flags().String("curve", "", "prime field (bn254|bls12-381|goldilocks)")
	checkCmd.Flags().String("level", "", "minimum severity reported (info|warning|error)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Int("max-diagnostics", 0, "per-definition diagnostic limit (0 = config default)")
	checkCmd.Flags().Int("max-visits", 0, "dataflow block-visit cap (0 = derived from graph size)")
	checkCmd.Flags().String("lookahead", "", "signal-assignment constraint lookahead (block|function)")
	checkCmd.Flags().StringSlice("disable", nil, "rules to disable, by name or ID")
	checkCmd.Flags().Bool("all", false, "also analyze definitions marked as library code")
	checkCmd.Flags().Bool("cache", false, "reuse per-definition results from the on-disk cache")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Int("max-output", 0, "truncate JSON output to this many diagnostics (0 = all)")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

// runCheck loads the configuration, runs the driver and prints the result.
// Findings are reported through exitError{1}; an unreadable input prints its
// load-error diagnostic and exits with 2, like configuration and flag problems.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	input := args[0]
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := cmd.Context()

	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Discover(configPath, filepath.Dir(input))
	if err != nil {
		return err
	}
	if err := applyCheckFlags(cmd, cfg); err != nil {
		return err
	}

	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := diagfmt.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	opts := driver.Options{
		Curve:          cfg.Curve,
		Jobs:           cfg.Jobs,
		MaxDiagnostics: cfg.MaxDiagnostics,
		MaxVisits:      cfg.MaxVisits,
		Lookahead:      cfg.Lookahead,
		UserInputOnly:  cfg.UserInputOnly,
		MinSeverity:    cfg.Level,
		Disabled:       cfg.Disabled,
	}
	if showTimings {
		opts.Timer = observ.NewTimer()
	}
	if cfg.Cache {
		cache, err := driver.OpenDiskCache(appName)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: disk cache disabled: %v\n", err)
		} else {
			opts.Cache = cache
		}
	}

	trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "config", describeConfig(cfg), 0)

	res := func() *driver.Result {
		prog, failed := driver.Load(ctx, input, opts.Timer)
		if failed != nil {
			return failed
		}
		var progress *ui.Progress
		if !quiet && shouldUseTUI(mode) && format == diagfmt.FormatPretty {
			names := make([]string, len(prog.Definitions))
			for i := range prog.Definitions {
				names[i] = string(prog.Definitions[i].Kind) + " " + prog.Definitions[i].Name
			}
			progress = ui.StartProgress(cmd.ErrOrStderr(), "checking "+filepath.Base(input), names)
			opts.Progress = progress.Feed
		}
		r, runErr := driver.Analyze(ctx, prog, opts)
		if progress != nil {
			if err := progress.Stop(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "ui: %v\n", err)
			}
		}
		if runErr != nil {
			err = runErr
		}
		return r
	}()
	if err != nil {
		return err
	}

	if err := writeResult(cmd, res, format); err != nil {
		return err
	}
	if !quiet && format == diagfmt.FormatPretty {
		fmt.Fprintln(cmd.ErrOrStderr(), diagfmt.Summary(res.Bag))
	}
	if showTimings {
		fmt.Fprint(cmd.ErrOrStderr(), opts.Timer.Summary())
	}
	if res.LoadFailed {
		return exitError{code: 2}
	}
	if res.Failed() {
		return exitError{code: 1}
	}
	return nil
}

// applyCheckFlags overrides configuration values with explicitly set flags.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("curve") {
		v, _ := flags.GetString("curve")
		curve, err := field.ParseCurve(v)
		if err != nil {
			return err
		}
		cfg.Curve = curve
	}
	if flags.Changed("level") {
		v, _ := flags.GetString("level")
		sev, err := diag.ParseSeverity(v)
		if err != nil {
			return err
		}
		cfg.Level = sev
	}
	if flags.Changed("lookahead") {
		v, _ := flags.GetString("lookahead")
		la, err := lint.ParseLookahead(v)
		if err != nil {
			return err
		}
		cfg.Lookahead = la
	}
	if flags.Changed("jobs") {
		cfg.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("max-diagnostics") {
		cfg.MaxDiagnostics, _ = flags.GetInt("max-diagnostics")
	}
	if flags.Changed("max-visits") {
		cfg.MaxVisits, _ = flags.GetInt("max-visits")
	}
	if flags.Changed("all") {
		all, _ := flags.GetBool("all")
		cfg.UserInputOnly = !all
	}
	if flags.Changed("cache") {
		cfg.Cache, _ = flags.GetBool("cache")
	}
	if flags.Changed("disable") {
		rules, _ := flags.GetStringSlice("disable")
		if err := cfg.Disable(rules...); err != nil {
			return err
		}
	}
	if cfg.Jobs < 0 || cfg.MaxDiagnostics < 0 || cfg.MaxVisits < 0 {
		return fmt.Errorf("jobs, max-diagnostics and max-visits must not be negative")
	}
	return nil
}

func writeResult(cmd *cobra.Command, res *driver.Result, format diagfmt.Format) error {
	colored, err := useColor(cmd)
	if err != nil {
		return err
	}
	withNotes, _ := cmd.Flags().GetBool("with-notes")
	fullPath, _ := cmd.Flags().GetBool("fullpath")
	maxOutput, _ := cmd.Flags().GetInt("max-output")

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	baseDir, _ := os.Getwd()
	return diagfmt.Write(cmd.OutOrStdout(), format, res.Bag, res.FileSet, diagfmt.Options{
		Pretty: diagfmt.PrettyOpts{Color: colored, Context: 1, PathMode: pathMode, BaseDir: baseDir, ShowNotes: withNotes},
		JSON: diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			BaseDir:          baseDir,
			Max:              maxOutput,
			IncludeNotes:     withNotes,
			IncludeRule:      true,
		},
		Sarif: diagfmt.SarifRunMeta{
			ToolName:       appName,
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
			BaseDir:        baseDir,
		},
	})
}

func describeConfig(cfg *config.Config) string {
	src := cfg.Path
	if src == "" {
		src = "defaults"
	}
	return fmt.Sprintf("%s: curve=%s level=%s lookahead=%s disabled=%v",
		src, cfg.Curve, cfg.Level, cfg.Lookahead, cfg.DisabledNames())
}
