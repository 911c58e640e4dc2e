package fuzztests

import (
	"bytes"
	"encoding/json"
	"testing"

	"wirecheck/internal/ast"
	"wirecheck/internal/testkit"
)

const (
	maxFuzzInput = 64 << 10 // 64 KiB
)

// seedPrograms builds small programs covering every statement kind.
func seedPrograms() []*ast.Program {
	b := testkit.NewBuilder()
	return []*ast.Program{
		testkit.Program(b.Template("Num2Bits", []string{"n"},
			b.Input("in"),
			b.Output("out", b.Ident("n")),
			b.Var("lc1", b.Int(0)),
			b.Var("e2", b.Int(1)),
			b.For(b.Var("i", b.Int(0)), b.Bin("<", b.Ident("i"), b.Ident("n")), b.Assign(b.Ident("i"), "++", nil),
				b.Block(
					b.Assign(b.Index(b.Ident("out"), b.Ident("i")), "<--", b.Bin("&", b.Bin(">>", b.Ident("in"), b.Ident("i")), b.Int(1))),
					b.Constrain(b.Bin("*", b.Index(b.Ident("out"), b.Ident("i")), b.Bin("-", b.Index(b.Ident("out"), b.Ident("i")), b.Int(1))), b.Int(0)),
					b.Assign(b.Ident("lc1"), "+=", b.Bin("*", b.Index(b.Ident("out"), b.Ident("i")), b.Ident("e2"))),
					b.Assign(b.Ident("e2"), "=", b.Bin("+", b.Ident("e2"), b.Ident("e2"))),
				)),
			b.Constrain(b.Ident("lc1"), b.Ident("in")),
		)),
		testkit.Program(b.Function("f", []string{"a", "b"},
			b.If(b.Bin("<", b.Int(1), b.Int(2)),
				b.Block(b.Return(b.Ternary(b.Ident("a"), b.Ident("b"), b.Int(0)))),
				b.Block(b.Log(b.Ident("a")))),
			b.While(b.Int(0), b.Block(b.Assert(b.Ident("b")))),
			b.Return(b.Un("~", b.Bin("**", b.Ident("a"), b.Int(2)))),
		)),
		testkit.Program(b.Template("C", nil,
			b.Component("c", b.Call("Num2Bits", b.Int(8))),
			b.Assign(b.Access(b.Ident("c"), "in"), "<==", b.Int(3)),
			b.Raw("goto"),
		)),
	}
}

func addSeeds(f *testing.F, encode func(*ast.Program) ([]byte, error)) {
	for _, p := range seedPrograms() {
		for i := range p.Definitions {
			if err := testkit.CheckSpanInvariants(&p.Definitions[i]); err != nil {
				f.Fatalf("seed %s: %v", p.Definitions[i].Name, err)
			}
		}
		data, err := encode(p)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(data)
	}
	f.Add([]byte{})
	f.Add([]byte(`{"files":[],"definitions":[{"kind":"function","name":"f","body":null}]}`))
}

func encodeJSON(p *ast.Program) ([]byte, error) { return json.Marshal(p) }

func encodeMsgpack(p *ast.Program) ([]byte, error) {
	var buf bytes.Buffer
	err := ast.EncodeMsgpack(&buf, p)
	return buf.Bytes(), err
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
