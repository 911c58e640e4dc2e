package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"wirecheck/internal/diag"
	"wirecheck/internal/source"
)

const circuit = "template T(n) {\n\tvar r = 0;\n\twhile (r < n) {\n\t\tvar r = 1;\n\t}\n}\n"

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("/home/user/circuits/t.circom", []byte(circuit))
	outer := strings.Index(circuit, "var r = 0")
	inner := strings.Index(circuit, "var r = 1")
	bag := diag.NewBag(0)
	d := diag.New(diag.SevWarning, diag.LintShadowing,
		source.Span{File: id, Start: uint32(inner + 4), End: uint32(inner + 5)}, //nolint:gosec
		"declaration of `r` shadows an outer declaration").
		WithNote(source.Span{File: id, Start: uint32(outer + 4), End: uint32(outer + 5)}, "outer `r` declared here") //nolint:gosec
	bag.Add(d)
	bag.Add(diag.NewError(diag.IOLoadError, source.Span{File: 7}, "cannot read input"))
	return bag, fs
}

func TestPretty(t *testing.T) {
	bag, fs := sampleBag(t)
	tests := []struct {
		name     string
		opts     PrettyOpts
		contains []string
		absent   []string
	}{
		{
			name: "relative with notes",
			opts: PrettyOpts{Context: 1, BaseDir: "/home/user", ShowNotes: true},
			contains: []string{
				"circuits/t.circom:4:7: WARNING LNT4001 [shadowing-declaration]: declaration of `r`",
				"3 |     while (r < n) {",
				"4 |         var r = 1;",
				"\n |" + strings.Repeat(" ", 13) + "^\n",
				"= note: circuits/t.circom:2:6: outer `r` declared here",
				"<unknown>:1:1: ERROR IO5001",
			},
		},
		{
			name:     "basename without notes",
			opts:     PrettyOpts{PathMode: PathModeBasename},
			contains: []string{"t.circom:4:7:"},
			absent:   []string{"note:", "3 |"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Pretty(&buf, bag, fs, tt.opts); err != nil {
				t.Fatal(err)
			}
			out := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("missing %q in:\n%s", s, out)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(out, s) {
					t.Errorf("unexpected %q in:\n%s", s, out)
				}
			}
			if strings.Contains(out, "\x1b[") {
				t.Error("color codes without Color")
			}
		})
	}
}

func TestCaretWidth(t *testing.T) {
	fs := source.NewFileSet()
	text := "var ширина = a * b;\n"
	id := fs.AddVirtual("w.circom", []byte(text))
	start := strings.Index(text, "a * b")
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevInfo, diag.LintFieldArithmetic,
		source.Span{File: id, Start: uint32(start), End: uint32(start + 5)}, "x")) //nolint:gosec
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("output:\n%s", buf.String())
	}
	// "1 | " + 13 display columns before `a`
	if want := " |" + strings.Repeat(" ", 1+13) + "^~~~~"; lines[2] != want {
		t.Errorf("caret line = %q, want %q", lines[2], want)
	}
}

func TestJSON(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true, IncludeRule: true, Max: 1})
	if err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || !out.Truncated {
		t.Fatalf("count=%d truncated=%v", out.Count, out.Truncated)
	}
	d := out.Diagnostics[0]
	if d.Code != "LNT4001" || d.Rule != "shadowing-declaration" || d.Severity != "WARNING" {
		t.Errorf("diagnostic = %+v", d)
	}
	if d.Location.StartLine != 4 || d.Location.StartCol != 7 || len(d.Notes) != 1 || d.Notes[0].Location.StartLine != 2 {
		t.Errorf("locations = %+v notes=%+v", d.Location, d.Notes)
	}
}

func TestSarif(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Sarif(&buf, bag, fs, SarifRunMeta{ToolName: "wirecheck", ToolVersion: "test", InvocationArgs: []string{"check"}}); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatal(err)
	}
	run := log.Runs[0]
	if len(run.Results) != 2 || run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("run = %+v", run)
	}
	r := run.Results[0]
	if run.Tool.Driver.Rules[r.RuleIndex].ID != r.RuleID || r.Level != "warning" || len(r.RelatedLocations) != 1 {
		t.Errorf("result = %+v", r)
	}
}

func TestWriteShortAndParse(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Write(&buf, FormatShort, bag, fs, Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "warning LNT4001 /home/user/circuits/t.circom:4:7 ") {
		t.Errorf("short output:\n%s", buf.String())
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("xml accepted")
	}
	if f, _ := ParseFormat(""); f != FormatPretty {
		t.Error("default format")
	}
	if Summary(bag) != "1 error, 1 warning, 0 info" {
		t.Errorf("summary = %q", Summary(bag))
	}
}
