package dice

// ResultNode is one node of an evaluated expression tree. The tree mirrors
// the parsed shape so callers can inspect exactly how a total was reached.
type ResultNode struct {
	// Type is one of "Number", "Dice", "BinOp", or "Paren".
	Type       string
	Total      int
	Number     int // dice count, Dice nodes only
	Size       int // die sides, Dice nodes only
	Op         string
	Mods       []string // modifier codes in declared order, Dice nodes only
	Values     []DieResult
	Children   []*ResultNode
	Annotation string
}

// RollResult is the evaluated output of one Roll call.
type RollResult struct {
	Expression string
	Total      int
	Rendered   string
	Root       *ResultNode
	// Dice lists every physical die across all terms in generation order.
	Dice       []DieResult
	Annotation string
}

// Roll evaluates the expression, drawing randomness from src. A nil src
// falls back to the crypto-backed source. Each call consumes fresh
// entropy, so rolling the same Expression twice may differ; everything
// else about the result is a pure function of the dice that came up.
func (e *Expression) Roll(src Source) (*RollResult, error) {
	if src == nil {
		src = NewCryptoSource()
	}

	root, err := evalNode(e.Root, src)
	if err != nil {
		return nil, err
	}

	result := &RollResult{
		Expression: e.Text,
		Total:      root.Total,
		Root:       root,
		Annotation: e.Annotation,
	}
	collectDice(root, &result.Dice)
	result.Rendered = Format(result)
	// "2d6 [fire] + 2" binds the annotation to the term, not the
	// expression; promote the first one after rendering so callers still
	// see it.
	if result.Annotation == "" {
		result.Annotation = firstAnnotation(root)
	}
	return result, nil
}

func evalNode(node Node, src Source) (*ResultNode, error) {
	switch n := node.(type) {
	case *Number:
		return &ResultNode{Type: "Number", Total: n.Value}, nil

	case *DiceTerm:
		dice, err := resolveTerm(n, src)
		if err != nil {
			return nil, err
		}
		total := 0
		for _, die := range dice {
			if die.Kept {
				total += die.Value
			}
		}
		codes := make([]string, 0, len(n.Mods))
		for _, mod := range n.Mods {
			codes = append(codes, mod.Code())
		}
		return &ResultNode{
			Type:       "Dice",
			Total:      total,
			Number:     n.Count,
			Size:       n.Sides,
			Mods:       codes,
			Values:     dice,
			Annotation: n.Annotation,
		}, nil

	case *Paren:
		child, err := evalNode(n.Child, src)
		if err != nil {
			return nil, err
		}
		return &ResultNode{Type: "Paren", Total: child.Total, Children: []*ResultNode{child}}, nil

	case *BinOp:
		left, err := evalNode(n.Left, src)
		if err != nil {
			return nil, err
		}
		right, err := evalNode(n.Right, src)
		if err != nil {
			return nil, err
		}
		total := 0
		switch n.Op {
		case OpAdd:
			total = left.Total + right.Total
		case OpSub:
			total = left.Total - right.Total
		case OpMul:
			total = left.Total * right.Total
		case OpDiv:
			if right.Total == 0 {
				return nil, divisionByZeroErr(n.Pos)
			}
			total = floorDiv(left.Total, right.Total)
		}
		return &ResultNode{
			Type:     "BinOp",
			Total:    total,
			Op:       n.Op.String(),
			Children: []*ResultNode{left, right},
		}, nil

	default:
		// The node set is closed; reaching this is a programming error.
		return nil, syntaxErr(-1, "", "unknown expression node")
	}
}

// floorDiv divides rounding toward negative infinity, so results are
// consistent for negative operands: -7/2 == -4.
func floorDiv(a, b int) int {
	quotient := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		quotient--
	}
	return quotient
}

// firstAnnotation finds the earliest term annotation in evaluation order.
func firstAnnotation(node *ResultNode) string {
	if node == nil {
		return ""
	}
	if node.Annotation != "" {
		return node.Annotation
	}
	for _, child := range node.Children {
		if tag := firstAnnotation(child); tag != "" {
			return tag
		}
	}
	return ""
}

func collectDice(node *ResultNode, out *[]DieResult) {
	if node == nil {
		return
	}
	*out = append(*out, node.Values...)
	for _, child := range node.Children {
		collectDice(child, out)
	}
}
