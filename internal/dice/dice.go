// Package dice parses and evaluates tabletop dice notation such as
// "4d6kh3+2" or "(1d4+1)*2".
//
// The engine is split into four pure stages: a parser producing an
// immutable Expression tree, a per-term modifier resolver, a recursive
// evaluator, and a formatter. Only evaluation touches randomness, and it
// does so through an injected Source so rolls are deterministic under
// test.
//
// # Notation
//
//   - Terms: NdM, dM (one die), integer literals
//   - Arithmetic: + - * / with standard precedence and parentheses;
//     division rounds toward negative infinity
//   - Keep/drop: khN, klN, pN (drop lowest), phN (drop highest)
//   - Rerolls: rrC (reroll until the condition no longer holds),
//     roC (reroll once)
//   - Exploding: e (on max face), eC
//   - Clamps: miN, maN
//   - Conditions C: N, <N, >N
//   - Annotations: "[tag]" after a term or expression, only when
//     Options.AllowComments is set
//
// All failures are *RollError values carrying an ErrorKind, so callers
// can surface them as structured payloads.
package dice

// Roll parses and evaluates notation in one step. Use Parse once and
// Expression.Roll repeatedly when the same notation is rolled many times.
func Roll(text string, opts Options, src Source) (*RollResult, error) {
	expr, err := Parse(text, opts)
	if err != nil {
		return nil, err
	}
	return expr.Roll(src)
}
