package diag

import (
	"fmt"
	"slices"
)

// Code is a stable numeric rule identifier. The thousands digit selects the
// producing layer; IDs and names must never be reused for another check.
type Code uint16

const (
	UnknownCode Code = 0

	// IR builder (name resolution)
	IRInfo                   Code = 1000
	IRUnknownReference       Code = 1001
	IRParameterNameCollision Code = 1002

	// CFG construction
	CFGInfo                 Code = 2000
	CFGUnsupportedConstruct Code = 2001
	CFGInvariantViolated    Code = 2002

	// Dataflow engine and driver internals
	EngInfo            Code = 3000
	EngAnalysisAborted Code = 3001
	EngInternalError   Code = 3002

	// Analysis passes
	LintInfo                Code = 4000
	LintShadowing           Code = 4001
	LintUnusedAssignment    Code = 4002
	LintConstantCondition   Code = 4003
	LintSignalAssignment    Code = 4004
	LintBitwiseFieldElement Code = 4005
	LintFieldArithmetic     Code = 4006
	LintFieldComparison     Code = 4007

	// Загрузка входных данных
	IOLoadError Code = 5001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:              "Unknown error",
		IRUnknownReference:       "reference to an undeclared name",
		IRParameterNameCollision: "parameter declared more than once",
		CFGUnsupportedConstruct:  "construct not supported by the analyzer",
		CFGInvariantViolated:     "control-flow graph invariant violated",
		EngAnalysisAborted:       "dataflow analysis did not converge",
		EngInternalError:         "internal analyzer error",
		LintShadowing:            "declaration shadows an outer declaration",
		LintUnusedAssignment:     "assigned value is never read",
		LintConstantCondition:    "condition is statically constant",
		LintSignalAssignment:     "signal assigned with <-- is never constrained",
		LintBitwiseFieldElement:  "bitwise operation over modular arithmetic",
		LintFieldArithmetic:      "field arithmetic may wrap around the prime",
		LintFieldComparison:      "comparison uses signed field-element semantics",
		IOLoadError:              "failed to load input",
	}

	codeName = map[Code]string{
		UnknownCode:              "unknown",
		IRUnknownReference:       "unknown-reference",
		IRParameterNameCollision: "parameter-name-collision",
		CFGUnsupportedConstruct:  "unsupported-construct",
		CFGInvariantViolated:     "cfg-invariant-violated",
		EngAnalysisAborted:       "analysis-aborted",
		EngInternalError:         "internal-error",
		LintShadowing:            "shadowing-declaration",
		LintUnusedAssignment:     "unused-assignment",
		LintConstantCondition:    "constant-condition",
		LintSignalAssignment:     "signal-assignment",
		LintBitwiseFieldElement:  "bitwise-field-element",
		LintFieldArithmetic:      "field-arithmetic",
		LintFieldComparison:      "field-comparison",
		IOLoadError:              "load-error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("ENG%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LNT%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

// Name returns the kebab-case rule name used in configuration files.
func (c Code) Name() string {
	if n, ok := codeName[c]; ok {
		return n
	}
	return codeName[UnknownCode]
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// IsFinding reports whether the code belongs to an analysis pass rather
// than to an analyzer failure.
func (c Code) IsFinding() bool {
	return c > LintInfo && c < 5000
}

// CodeByName resolves a rule by its Name or its ID.
func CodeByName(name string) (Code, bool) {
	for c, n := range codeName {
		if c == UnknownCode {
			continue
		}
		if n == name || c.ID() == name {
			return c, true
		}
	}
	return UnknownCode, false
}

// Codes returns every registered code except UnknownCode, ascending.
func Codes() []Code {
	out := make([]Code, 0, len(codeName))
	for c := range codeName {
		if c != UnknownCode {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}
