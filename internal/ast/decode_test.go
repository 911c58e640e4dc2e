package ast_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wirecheck/internal/ast"
	"wirecheck/internal/source"
	"wirecheck/internal/testkit"
)

const sampleJSON = `{
  "files": [{"path": "num2bits.circom", "text": "template Num2Bits(n) {}"}],
  "definitions": [{
    "kind": "template",
    "name": "Num2Bits",
    "params": [{"name": "n", "span": {"file": 0, "start": 18, "end": 19}}],
    "span": {"file": 0, "start": 0, "end": 23},
    "body": {"kind": "block", "span": {"file": 0, "start": 21, "end": 23}, "children": [
      {"kind": "signal", "signal": "input", "name": "in", "span": {"file": 0, "start": 21, "end": 22}}
    ]}
  }]
}`

func TestDecodeJSON(t *testing.T) {
	p, err := ast.DecodeJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(p.Definitions) != 1 {
		t.Fatalf("definitions = %d", len(p.Definitions))
	}
	d := p.Definitions[0]
	if d.Kind != ast.DefTemplate || d.Name != "Num2Bits" || len(d.Params) != 1 {
		t.Errorf("unexpected definition %+v", d)
	}
	sig := d.Body.Child(0)
	if sig == nil || sig.Kind != ast.KindSignal || sig.Signal != ast.SignalInput {
		t.Errorf("unexpected body child %+v", sig)
	}
	if d.Body.Child(5) != nil {
		t.Error("Child out of range should be nil")
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	_, err := ast.DecodeJSON(strings.NewReader(`{"files": [], "bogus": 1}`))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestMsgpackAndSniff(t *testing.T) {
	b := testkit.NewBuilder()
	p := testkit.Program(b.Template("T", []string{"n"},
		b.Var("x", b.Int(3)),
		b.While(b.Bin("<", b.Ident("x"), b.Ident("n")),
			b.Block(b.Assign(b.Ident("x"), "+=", b.Int(1)))),
	))

	var buf bytes.Buffer
	if err := ast.EncodeMsgpack(&buf, p); err != nil {
		t.Fatalf("EncodeMsgpack: %v", err)
	}
	got, err := ast.Decode(bytes.NewReader(buf.Bytes()), ast.FormatAuto)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	body := got.Definitions[0].Body
	loop := body.Child(1)
	if loop.Kind != ast.KindWhile || loop.Child(0).Op != "<" {
		t.Errorf("loop did not survive: %+v", loop)
	}
	if err := testkit.CheckSpanInvariants(&got.Definitions[0]); err != nil {
		t.Errorf("span invariants: %v", err)
	}

	js, err := ast.Decode(strings.NewReader("\n  "+sampleJSON), ast.FormatAuto)
	if err != nil {
		t.Fatalf("sniffed json: %v", err)
	}
	if js.Definitions[0].Name != "Num2Bits" {
		t.Error("json not sniffed")
	}
}

func TestValidate(t *testing.T) {
	p := &ast.Program{
		Files: []ast.SourceFile{{Path: "a.circom"}},
		Definitions: []ast.Definition{
			{Kind: "macro", Name: "M", Body: &ast.Node{Kind: ast.KindBlock}},
			{Kind: ast.DefFunction, Name: "", Body: &ast.Node{Kind: ast.KindBlock}},
			{Kind: ast.DefFunction, Name: "f"},
			{Kind: ast.DefFunction, Name: "g", Body: &ast.Node{Kind: ast.KindBlock}, Span: source.Span{File: 3}},
		},
	}
	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"unknown kind", "empty name", "missing body", "out of range"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q lacks %q", err, want)
		}
	}
}

func TestLoadAndRegister(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	p, err := ast.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fs := source.NewFileSet()
	if err := p.Register(fs); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if fs.Len() != 1 || fs.Text(source.Span{File: 0, Start: 0, End: 8}) != "template" {
		t.Errorf("file not registered with text")
	}
	if err := p.Register(fs); err == nil {
		t.Error("Register on non-empty set should fail")
	}

	if _, err := ast.Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ast.Format
		wantErr bool
	}{
		{"", ast.FormatAuto, false},
		{"JSON", ast.FormatJSON, false},
		{"mp", ast.FormatMsgpack, false},
		{"yaml", ast.FormatAuto, true},
	}
	for _, tt := range tests {
		got, err := ast.ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
}
