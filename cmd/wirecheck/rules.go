package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"wirecheck/internal/config"
	"wirecheck/internal/lint"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [dir]",
	Short: "List analysis rules and whether the governing configuration enables them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type ruleInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Enabled  bool   `json:"enabled"`
	Doc      string `json:"doc"`
}

func runRules(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Discover(configPath, dir)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	rules := make([]ruleInfo, 0, 8)
	for _, a := range lint.Analyzers() {
		rules = append(rules, ruleInfo{
			ID:       a.Code.ID(),
			Name:     a.Name(),
			Severity: strings.ToLower(a.Severity.String()),
			Enabled:  cfg.Enabled(a.Code),
			Doc:      a.Doc,
		})
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rules)
	case "pretty":
		renderRules(cmd.OutOrStdout(), rules)
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

func renderRules(out io.Writer, rules []ruleInfo) {
	nameWidth := 0
	for _, r := range rules {
		nameWidth = max(nameWidth, runewidth.StringWidth(r.Name))
	}
	for _, r := range rules {
		state := "on"
		if !r.Enabled {
			state = "off"
		}
		fmt.Fprintf(out, "%s  %s  %-7s %-3s  %s\n",
			r.ID, runewidth.FillRight(r.Name, nameWidth), r.Severity, state, r.Doc)
	}
}
