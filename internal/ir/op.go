package ir

// Op is an expression operator. Unary minus and binary minus are distinct
// operators that print the same.
type Op uint8

const (
	OpInvalid Op = iota

	// arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv    // field division, multiplies by the inverse
	OpIntDiv // \
	OpMod
	OpPow
	OpShl
	OpShr

	// bitwise
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot

	// logical
	OpAnd
	OpOr
	OpNot

	// comparison
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// unary arithmetic
	OpNeg
	OpPlus
)

var opText = [...]string{
	OpInvalid: "?",
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "/",
	OpIntDiv:  "\\",
	OpMod:     "%",
	OpPow:     "**",
	OpShl:     "<<",
	OpShr:     ">>",
	OpBitAnd:  "&",
	OpBitOr:   "|",
	OpBitXor:  "^",
	OpBitNot:  "~",
	OpAnd:     "&&",
	OpOr:      "||",
	OpNot:     "!",
	OpEq:      "==",
	OpNe:      "!=",
	OpLt:      "<",
	OpLe:      "<=",
	OpGt:      ">",
	OpGe:      ">=",
	OpNeg:     "-",
	OpPlus:    "+",
}

func (op Op) String() string {
	if int(op) < len(opText) {
		return opText[op]
	}
	return "?"
}

var binaryOps = map[string]Op{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "\\": OpIntDiv, "%": OpMod,
	"**": OpPow, "<<": OpShl, ">>": OpShr,
	"&": OpBitAnd, "|": OpBitOr, "^": OpBitXor,
	"&&": OpAnd, "||": OpOr,
	"==": OpEq, "!=": OpNe, "<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe,
}

var unaryOps = map[string]Op{
	"-": OpNeg, "+": OpPlus, "!": OpNot, "~": OpBitNot,
}

// compound assignment operator -> binary operator
var compoundOps = map[string]Op{
	"+=": OpAdd, "-=": OpSub, "*=": OpMul, "/=": OpDiv, "\\=": OpIntDiv, "%=": OpMod,
	"**=": OpPow, "<<=": OpShl, ">>=": OpShr, "&=": OpBitAnd, "|=": OpBitOr, "^=": OpBitXor,
	"++": OpAdd, "--": OpSub,
}

func ParseBinaryOp(s string) (Op, bool) {
	op, ok := binaryOps[s]
	return op, ok
}

func ParseUnaryOp(s string) (Op, bool) {
	op, ok := unaryOps[s]
	return op, ok
}

func (op Op) IsBitwise() bool {
	switch op {
	case OpBitAnd, OpBitOr, OpBitXor, OpBitNot:
		return true
	default:
		return false
	}
}

// IsRelational reports <, <=, > and >=.
func (op Op) IsRelational() bool {
	switch op {
	case OpLt, OpLe, OpGt, OpGe:
		return true
	default:
		return false
	}
}

// IsModular reports operators whose result depends on reduction modulo p
// in a way bit operations do not commute with.
func (op Op) IsModular() bool {
	switch op {
	case OpMul, OpPow, OpMod:
		return true
	default:
		return false
	}
}

// AssignOp distinguishes the three assignment forms.
type AssignOp uint8

const (
	AssignPlain      AssignOp = iota // =
	AssignWitness                    // <--
	AssignConstraint                 // <==
)

func (op AssignOp) String() string {
	switch op {
	case AssignPlain:
		return "="
	case AssignWitness:
		return "<--"
	case AssignConstraint:
		return "<=="
	default:
		return "?"
	}
}
