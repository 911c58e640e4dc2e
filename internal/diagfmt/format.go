package diagfmt

import (
	"fmt"
	"io"

	"wirecheck/internal/diag"
	"wirecheck/internal/source"
)

// Format selects the output renderer of the check command.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatShort  Format = "short"
	FormatJSON   Format = "json"
	FormatSarif  Format = "sarif"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatPretty, FormatShort, FormatJSON, FormatSarif:
		return f, nil
	case "":
		return FormatPretty, nil
	}
	return "", fmt.Errorf("unknown format %q (expected: pretty|short|json|sarif)", s)
}

// Options bundles the per-format settings for Write.
type Options struct {
	Pretty PrettyOpts
	JSON   JSONOpts
	Sarif  SarifRunMeta
}

// Write renders bag in the given format.
func Write(w io.Writer, format Format, bag *diag.Bag, fs *source.FileSet, opts Options) error {
	switch format {
	case FormatShort:
		out := diag.FormatShort(bag.Items(), fs, true)
		if out == "" {
			return nil
		}
		_, err := fmt.Fprintln(w, out)
		return err
	case FormatJSON:
		return JSON(w, bag, fs, opts.JSON)
	case FormatSarif:
		return Sarif(w, bag, fs, opts.Sarif)
	default:
		return Pretty(w, bag, fs, opts.Pretty)
	}
}
