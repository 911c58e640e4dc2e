package diag

import (
	"fmt"
	"strings"

	"wirecheck/internal/source"
)

// FormatShort renders diagnostics one per line as
// "<severity> <ID> <path>:<line>:<col> <message>", with notes on their own
// lines when includeNotes is set. Order is preserved; callers sort the bag.
// Used by the short CLI format and by golden-style tests.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	lines := make([]string, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			severityLabel(d.Severity), d.Code.ID(), location(fs, d.Primary), sanitizeMessage(d.Message)))
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			lines = append(lines, fmt.Sprintf("note %s %s %s",
				d.Code.ID(), location(fs, note.Span), sanitizeMessage(note.Msg)))
		}
	}
	return strings.Join(lines, "\n")
}

func location(fs *source.FileSet, span source.Span) string {
	path := "<unknown>"
	if fs != nil {
		if f := fs.Get(span.File); f != nil {
			path = f.Path
		}
	}
	var start source.LineCol
	if fs != nil {
		start, _ = fs.Resolve(span)
	} else {
		start = source.LineCol{Line: 1, Col: span.Start + 1}
	}
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
