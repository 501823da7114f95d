package dice

import (
	"fmt"
	"strconv"
)

// Node is the closed set of parsed expression variants. An Expression owns
// its tree; nodes are immutable after parsing so the same Expression can be
// rolled repeatedly.
type Node interface {
	node()
}

// Number is an integer literal operand.
type Number struct {
	Value int
	Pos   int
}

// DiceTerm is an NdM term with an ordered modifier chain and an optional
// bracketed annotation.
type DiceTerm struct {
	Count      int
	Sides      int
	Mods       []Modifier
	Annotation string
	Pos        int
}

// Op identifies a binary arithmetic operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// BinOp combines two sub-expressions. Precedence is encoded in tree shape
// by the parser, so evaluation is plain recursion.
type BinOp struct {
	Op    Op
	Left  Node
	Right Node
	Pos   int
}

// Paren is an explicitly parenthesized group, kept as a node so the
// formatter can reproduce the grouping.
type Paren struct {
	Child Node
	Pos   int
}

func (*Number) node()   {}
func (*DiceTerm) node() {}
func (*BinOp) node()    {}
func (*Paren) node()    {}

// ModifierKind identifies a dice-term modifier operation.
type ModifierKind int

const (
	ModKeepHighest ModifierKind = iota
	ModKeepLowest
	ModDropLowest
	ModDropHighest
	ModRerollOnce
	ModRerollUntil
	ModExplode
	ModMin
	ModMax
)

// CmpKind identifies how a condition compares a die value to its target.
type CmpKind int

const (
	CmpEq CmpKind = iota
	CmpLt
	CmpGt
)

// Condition is a die-value predicate used by reroll and explode modifiers.
type Condition struct {
	Cmp   CmpKind
	Value int
}

// Matches reports whether a die value satisfies the condition.
func (c Condition) Matches(value int) bool {
	switch c.Cmp {
	case CmpLt:
		return value < c.Value
	case CmpGt:
		return value > c.Value
	default:
		return value == c.Value
	}
}

func (c Condition) String() string {
	switch c.Cmp {
	case CmpLt:
		return "<" + strconv.Itoa(c.Value)
	case CmpGt:
		return ">" + strconv.Itoa(c.Value)
	default:
		return strconv.Itoa(c.Value)
	}
}

// Modifier is one operation in a dice term's modifier chain. N carries the
// count for keep/drop and the clamp value for mi/ma; Cond carries the
// predicate for reroll and explode (nil means explode-on-max).
type Modifier struct {
	Kind ModifierKind
	N    int
	Cond *Condition
	Pos  int
}

// Code renders the modifier back into its notation form, e.g. "kh3" or
// "rr<10".
func (m Modifier) Code() string {
	switch m.Kind {
	case ModKeepHighest:
		return "kh" + strconv.Itoa(m.N)
	case ModKeepLowest:
		return "kl" + strconv.Itoa(m.N)
	case ModDropLowest:
		return "p" + strconv.Itoa(m.N)
	case ModDropHighest:
		return "ph" + strconv.Itoa(m.N)
	case ModRerollOnce:
		return "ro" + m.Cond.String()
	case ModRerollUntil:
		return "rr" + m.Cond.String()
	case ModExplode:
		if m.Cond == nil {
			return "e"
		}
		return "e" + m.Cond.String()
	case ModMin:
		return "mi" + strconv.Itoa(m.N)
	case ModMax:
		return "ma" + strconv.Itoa(m.N)
	default:
		return fmt.Sprintf("mod(%d)", int(m.Kind))
	}
}

// Expression is a parsed dice expression. It is stateless and reusable:
// randomness is drawn fresh on every Roll, so repeated rolls of the same
// Expression may produce different results.
type Expression struct {
	Root       Node
	Annotation string
	Text       string
}
