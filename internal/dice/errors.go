package dice

import (
	"errors"
	"fmt"
)

// ErrorKind classifies roll failures so callers can surface them as
// structured, recoverable payloads instead of opaque strings.
type ErrorKind string

const (
	// KindSyntax indicates malformed dice notation.
	KindSyntax ErrorKind = "SyntaxError"
	// KindRerollLimitExceeded indicates a reroll or explosion chain that
	// could not terminate within the per-term iteration cap.
	KindRerollLimitExceeded ErrorKind = "RerollLimitExceeded"
	// KindDivisionByZero indicates a divisor that evaluated to zero.
	KindDivisionByZero ErrorKind = "DivisionByZero"
	// KindInvalidModifier indicates a structurally valid expression with an
	// unusable parameter, such as a keep count of zero or a zero-sided die.
	KindInvalidModifier ErrorKind = "InvalidModifierParameter"
)

// RollError is the error type for every failure the engine reports.
// Pos is a byte offset into the original expression, or -1 when the
// failure has no useful location.
type RollError struct {
	Kind    ErrorKind
	Pos     int
	Token   string
	Message string
}

func (e *RollError) Error() string {
	msg := e.Message
	if e.Token != "" {
		msg = fmt.Sprintf("%s near %q", msg, e.Token)
	}
	if e.Pos >= 0 {
		msg = fmt.Sprintf("%s at position %d", msg, e.Pos)
	}
	return msg
}

// KindOf extracts the error kind from an engine error. It returns an
// empty kind for errors that did not originate in this package.
func KindOf(err error) ErrorKind {
	var rollErr *RollError
	if errors.As(err, &rollErr) {
		return rollErr.Kind
	}
	return ""
}

func syntaxErr(pos int, token, format string, args ...any) *RollError {
	return &RollError{Kind: KindSyntax, Pos: pos, Token: token, Message: fmt.Sprintf(format, args...)}
}

func invalidModifierErr(pos int, format string, args ...any) *RollError {
	return &RollError{Kind: KindInvalidModifier, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func rerollLimitErr(pos int, code string) *RollError {
	return &RollError{
		Kind:    KindRerollLimitExceeded,
		Pos:     pos,
		Token:   code,
		Message: fmt.Sprintf("reroll limit of %d exceeded", maxTermIterations),
	}
}

func rollLimitErr(pos, count int) *RollError {
	return &RollError{
		Kind:    KindRerollLimitExceeded,
		Pos:     pos,
		Message: fmt.Sprintf("dice count %d exceeds the roll limit of %d", count, maxTermIterations),
	}
}

func divisionByZeroErr(pos int) *RollError {
	return &RollError{Kind: KindDivisionByZero, Pos: pos, Message: "division by zero"}
}
