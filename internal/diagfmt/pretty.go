package diagfmt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"wirecheck/internal/diag"
	"wirecheck/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info *color.Color
	note, code      *color.Color
	gutter, caret   *color.Color
	path            *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgGreen),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgMagenta, color.Bold),
		path:   color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.gutter, p.caret, p.path} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE> [rule]: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	bw := bufio.NewWriter(w)
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(bw, "%s: %s %s: %s\n",
			pal.path.Sprintf("%s:%d:%d", formatPath(fs.Get(d.Primary.File), opts.PathMode, opts.BaseDir), start.Line, start.Col),
			pal.severity(d.Severity).Sprint(d.Severity),
			pal.code.Sprintf("%s [%s]", d.Code.ID(), d.Code.Name()),
			d.Message)
		writeSnippet(bw, fs, d.Primary, int(max(opts.Context, 0)), opts.Width, pal)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			ns, _ := fs.Resolve(n.Span)
			fmt.Fprintf(bw, "  %s %s: %s\n", pal.note.Sprint("= note:"),
				pal.path.Sprintf("%s:%d:%d", formatPath(fs.Get(n.Span.File), opts.PathMode, opts.BaseDir), ns.Line, ns.Col),
				n.Msg)
			if n.Span != d.Primary {
				writeSnippet(bw, fs, n.Span, 0, opts.Width, pal)
			}
		}
	}
	return bw.Flush()
}

// writeSnippet prints the lines around span and a caret underline. Files
// without text are skipped silently.
func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, context int, width uint8, pal palette) {
	f := fs.Get(span.File)
	if !f.HasSource() {
		return
	}
	start, end := fs.Resolve(span)
	first := max(1, int(start.Line)-context)
	gw := len(fmt.Sprint(start.Line))

	for ln := first; ln <= int(start.Line); ln++ {
		text := expandTabs(f.GetLine(uint32(ln))) //nolint:gosec // line numbers come from Resolve
		if width > 0 {
			text = runewidth.Truncate(text, int(width), "…")
		}
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gw, ln), text)
	}

	line := f.GetLine(start.Line)
	lo := clampCol(line, start.Col)
	hi := len(line)
	if end.Line == start.Line {
		hi = clampCol(line, end.Col)
	}
	pad := runewidth.StringWidth(expandTabs(line[:lo]))
	n := max(1, runewidth.StringWidth(expandTabs(line[lo:max(lo, hi)])))
	underline := "^" + strings.Repeat("~", n-1)
	fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", gw, ""), strings.Repeat(" ", pad), pal.caret.Sprint(underline))
}

// clampCol converts a 1-based byte column into an index into line.
func clampCol(line string, col uint32) int {
	if col == 0 {
		return 0
	}
	return min(int(col-1), len(line))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// Summary returns a one-line count of diagnostics by severity.
func Summary(bag *diag.Bag) string {
	errs := bag.Count(diag.SevError)
	warns := bag.Count(diag.SevWarning)
	infos := bag.Count(diag.SevInfo)
	if errs+warns+infos == 0 {
		return "no issues found"
	}
	return fmt.Sprintf("%s, %s, %s", plural(errs, "error"), plural(warns, "warning"), plural(infos, "info"))
}

func plural(n int, word string) string {
	if n == 1 || word == "info" {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
