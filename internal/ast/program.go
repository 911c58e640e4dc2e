package ast

import (
	"errors"
	"fmt"

	"wirecheck/internal/source"
)

// DefKind distinguishes templates from functions.
type DefKind string

const (
	DefTemplate DefKind = "template"
	DefFunction DefKind = "function"
)

// SourceFile describes one file of the analyzed program. Text is optional;
// when empty the driver tries to read Path from disk for rendering.
type SourceFile struct {
	Path string `json:"path" msgpack:"path"`
	Text string `json:"text,omitempty" msgpack:"text,omitempty"`
}

type Param struct {
	Name string      `json:"name" msgpack:"name"`
	Span source.Span `json:"span" msgpack:"span"`
}

// Definition is one template or function body.
type Definition struct {
	Kind    DefKind     `json:"kind" msgpack:"kind"`
	Name    string      `json:"name" msgpack:"name"`
	Params  []Param     `json:"params,omitempty" msgpack:"params,omitempty"`
	Body    *Node       `json:"body" msgpack:"body"`
	Span    source.Span `json:"span" msgpack:"span"`
	Library bool        `json:"library,omitempty" msgpack:"library,omitempty"` // pulled in via include, not written by the user
}

// Program is the parser output: files indexed by source.FileID and the
// definitions found in them.
type Program struct {
	Files       []SourceFile `json:"files" msgpack:"files"`
	Definitions []Definition `json:"definitions" msgpack:"definitions"`
}

// Validate performs shallow structural checks. Node kinds are left to the IR
// builder so that one bad definition does not reject the whole program.
func (p *Program) Validate() error {
	if p == nil {
		return errors.New("nil program")
	}
	var errs []error
	for i := range p.Definitions {
		d := &p.Definitions[i]
		switch d.Kind {
		case DefTemplate, DefFunction:
		default:
			errs = append(errs, fmt.Errorf("definition %d (%q): unknown kind %q", i, d.Name, d.Kind))
		}
		if d.Name == "" {
			errs = append(errs, fmt.Errorf("definition %d: empty name", i))
		}
		if d.Body == nil {
			errs = append(errs, fmt.Errorf("definition %d (%q): missing body", i, d.Name))
		}
		if len(p.Files) > 0 && int(d.Span.File) >= len(p.Files) {
			errs = append(errs, fmt.Errorf("definition %d (%q): file %d out of range", i, d.Name, d.Span.File))
		}
	}
	return errors.Join(errs...)
}

// Register adds the program files to fs in order, so that FileID i in the
// program spans refers to fs file i. fs must be empty.
func (p *Program) Register(fs *source.FileSet) error {
	if fs.Len() != 0 {
		return fmt.Errorf("file set already holds %d files", fs.Len())
	}
	for _, f := range p.Files {
		if f.Text != "" {
			fs.AddVirtual(f.Path, []byte(f.Text))
			continue
		}
		fs.LoadOrVirtual(f.Path)
	}
	return nil
}
