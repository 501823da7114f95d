package dice

import (
	"strconv"
	"strings"
)

// Options controls parsing behavior.
type Options struct {
	// AllowComments enables trailing bracketed annotations such as
	// "2d6 [fire]". When disabled (the default) a bracket is a syntax
	// error, matching strict-notation callers.
	AllowComments bool
}

// Parse converts dice notation into an Expression. It performs all static
// checks, so a nil error from Parse is exactly the "valid syntax" answer:
// no randomness is consumed.
func Parse(text string, opts Options) (*Expression, error) {
	p := &parser{src: text, allowComments: opts.AllowComments}
	p.skipSpaces()
	if p.eof() {
		return nil, syntaxErr(0, "", "empty expression")
	}

	root, err := p.parseSum()
	if err != nil {
		return nil, err
	}

	annotation := ""
	p.skipSpaces()
	if p.peek() == '[' {
		annotation, err = p.parseAnnotation()
		if err != nil {
			return nil, err
		}
	}

	p.skipSpaces()
	if !p.eof() {
		return nil, syntaxErr(p.pos, p.remainderToken(), "unexpected token")
	}

	return &Expression{Root: root, Annotation: annotation, Text: strings.TrimSpace(text)}, nil
}

// Validate checks notation without rolling. It is a pure function of its
// input: parsing performs every static check and never draws randomness.
func Validate(text string, opts Options) error {
	_, err := Parse(text, opts)
	return err
}

type parser struct {
	src           string
	pos           int
	allowComments bool
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

// peek returns the current byte, or 0 at end of input.
func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(offset int) byte {
	if p.pos+offset >= len(p.src) {
		return 0
	}
	return p.src[p.pos+offset]
}

func (p *parser) next() byte {
	c := p.peek()
	p.pos++
	return c
}

func (p *parser) skipSpaces() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

// remainderToken returns a short slice of the unparsed input for error
// messages.
func (p *parser) remainderToken() string {
	rest := p.src[p.pos:]
	if idx := strings.IndexAny(rest, " \t"); idx > 0 {
		rest = rest[:idx]
	}
	if len(rest) > 10 {
		rest = rest[:10]
	}
	return rest
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (p *parser) number() (int, error) {
	start := p.pos
	for !p.eof() && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return 0, syntaxErr(start, p.remainderToken(), "expected a number")
	}
	value, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, syntaxErr(start, p.src[start:p.pos], "number out of range")
	}
	return value, nil
}

// parseSum handles + and - at the lowest precedence level.
func (p *parser) parseSum() (Node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpaces()
		c := p.peek()
		if c != '+' && c != '-' {
			return left, nil
		}
		pos := p.pos
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		op := OpAdd
		if c == '-' {
			op = OpSub
		}
		left = &BinOp{Op: op, Left: left, Right: right, Pos: pos}
	}
}

// parseProduct handles * and /, binding tighter than + and -.
func (p *parser) parseProduct() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpaces()
		c := p.peek()
		if c != '*' && c != '/' {
			return left, nil
		}
		pos := p.pos
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		op := OpMul
		if c == '/' {
			op = OpDiv
		}
		left = &BinOp{Op: op, Left: left, Right: right, Pos: pos}
	}
}

func (p *parser) parsePrimary() (Node, error) {
	p.skipSpaces()
	pos := p.pos
	c := p.peek()

	switch {
	case c == '(':
		p.next()
		child, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return nil, syntaxErr(p.pos, p.remainderToken(), "expected closing parenthesis")
		}
		p.next()
		return &Paren{Child: child, Pos: pos}, nil

	case c == '-' && isDigit(p.peekAt(1)):
		p.next()
		value, err := p.number()
		if err != nil {
			return nil, err
		}
		return &Number{Value: -value, Pos: pos}, nil

	case isDigit(c):
		value, err := p.number()
		if err != nil {
			return nil, err
		}
		if p.peek() == 'd' && (isDigit(p.peekAt(1)) || p.peekAt(1) == 0) {
			return p.parseDice(value, pos)
		}
		return &Number{Value: value, Pos: pos}, nil

	case c == 'd':
		// Bare "dN" means one die.
		return p.parseDice(1, pos)

	case c == '[':
		return nil, p.bracketError()

	case c == 0:
		return nil, syntaxErr(p.pos, "", "unexpected end of expression")

	default:
		return nil, syntaxErr(p.pos, p.remainderToken(), "unexpected token")
	}
}

// parseDice parses the "dM" tail of a dice term plus its modifier chain
// and optional annotation. count has already been consumed.
func (p *parser) parseDice(count, pos int) (Node, error) {
	p.next() // consume 'd'
	if !isDigit(p.peek()) {
		return nil, syntaxErr(p.pos, p.remainderToken(), "missing die size")
	}
	sides, err := p.number()
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, invalidModifierErr(pos, "dice count must be positive, got %d", count)
	}
	if sides <= 0 {
		return nil, invalidModifierErr(pos, "die must have at least one side, got %d", sides)
	}

	mods, err := p.parseModifiers()
	if err != nil {
		return nil, err
	}

	annotation := ""
	p.skipSpaces()
	if p.peek() == '[' {
		annotation, err = p.parseAnnotation()
		if err != nil {
			return nil, err
		}
	}

	return &DiceTerm{Count: count, Sides: sides, Mods: mods, Annotation: annotation, Pos: pos}, nil
}

// parseModifiers reads the modifier chain directly after a dice term. The
// chain ends at the first byte that does not start a known modifier code;
// the caller's grammar level decides whether the remainder is valid.
func (p *parser) parseModifiers() ([]Modifier, error) {
	var mods []Modifier
	for {
		pos := p.pos
		switch c := p.peek(); c {
		case 'k':
			kind := ModKeepHighest
			switch p.peekAt(1) {
			case 'h':
				kind = ModKeepHighest
			case 'l':
				kind = ModKeepLowest
			default:
				return nil, syntaxErr(pos, p.remainderToken(), "unknown modifier")
			}
			p.pos += 2
			n, err := p.number()
			if err != nil {
				return nil, err
			}
			if n <= 0 {
				return nil, invalidModifierErr(pos, "keep count must be positive, got %d", n)
			}
			mods = append(mods, Modifier{Kind: kind, N: n, Pos: pos})

		case 'p':
			kind := ModDropLowest
			p.pos++
			if p.peek() == 'h' {
				kind = ModDropHighest
				p.pos++
			}
			n, err := p.number()
			if err != nil {
				return nil, err
			}
			if n <= 0 {
				return nil, invalidModifierErr(pos, "drop count must be positive, got %d", n)
			}
			mods = append(mods, Modifier{Kind: kind, N: n, Pos: pos})

		case 'r':
			kind := ModRerollUntil
			switch p.peekAt(1) {
			case 'r':
				kind = ModRerollUntil
			case 'o':
				kind = ModRerollOnce
			default:
				return nil, syntaxErr(pos, p.remainderToken(), "unknown modifier")
			}
			p.pos += 2
			cond, err := p.parseCondition()
			if err != nil {
				return nil, err
			}
			mods = append(mods, Modifier{Kind: kind, Cond: cond, Pos: pos})

		case 'e':
			p.pos++
			var cond *Condition
			if c := p.peek(); c == '<' || c == '>' || isDigit(c) {
				parsed, err := p.parseCondition()
				if err != nil {
					return nil, err
				}
				cond = parsed
			}
			mods = append(mods, Modifier{Kind: ModExplode, Cond: cond, Pos: pos})

		case 'm':
			kind := ModMin
			switch p.peekAt(1) {
			case 'i':
				kind = ModMin
			case 'a':
				kind = ModMax
			default:
				return nil, syntaxErr(pos, p.remainderToken(), "unknown modifier")
			}
			p.pos += 2
			n, err := p.number()
			if err != nil {
				return nil, err
			}
			mods = append(mods, Modifier{Kind: kind, N: n, Pos: pos})

		default:
			return mods, nil
		}
	}
}

func (p *parser) parseCondition() (*Condition, error) {
	cmp := CmpEq
	switch p.peek() {
	case '<':
		cmp = CmpLt
		p.pos++
	case '>':
		cmp = CmpGt
		p.pos++
	}
	value, err := p.number()
	if err != nil {
		return nil, err
	}
	return &Condition{Cmp: cmp, Value: value}, nil
}

// parseAnnotation reads a bracketed tag. The opening bracket is at the
// current position.
func (p *parser) parseAnnotation() (string, error) {
	if !p.allowComments {
		return "", p.bracketError()
	}
	start := p.pos
	p.next() // consume '['
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return "", syntaxErr(start, p.remainderToken(), "unterminated annotation")
	}
	tag := strings.TrimSpace(p.src[p.pos : p.pos+end])
	p.pos += end + 1
	if tag == "" {
		return "", syntaxErr(start, "[]", "empty annotation")
	}
	return tag, nil
}

func (p *parser) bracketError() *RollError {
	return syntaxErr(p.pos, p.remainderToken(), "annotations are not enabled")
}
