package diag

import (
	"wirecheck/internal/source"
)

// Note is a secondary location attached to a diagnostic.
type Note struct {
	Span source.Span `msgpack:"span"`
	Msg  string      `msgpack:"msg"`
}

// Diagnostic is immutable once emitted.
type Diagnostic struct {
	Severity Severity    `msgpack:"sev"`
	Code     Code        `msgpack:"code"`
	Message  string      `msgpack:"msg"`
	Primary  source.Span `msgpack:"primary"`
	Notes    []Note      `msgpack:"notes,omitempty"`
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	notes := make([]Note, len(d.Notes), len(d.Notes)+1)
	copy(notes, d.Notes)
	d.Notes = append(notes, Note{Span: sp, Msg: msg})
	return d
}

// Equal compares diagnostics field by field, notes included.
func (d Diagnostic) Equal(o Diagnostic) bool {
	if d.Severity != o.Severity || d.Code != o.Code || d.Message != o.Message || d.Primary != o.Primary {
		return false
	}
	if len(d.Notes) != len(o.Notes) {
		return false
	}
	for i := range d.Notes {
		if d.Notes[i] != o.Notes[i] {
			return false
		}
	}
	return true
}
