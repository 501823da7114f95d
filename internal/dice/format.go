package dice

import (
	"strconv"
	"strings"
)

// Format renders an evaluated result as a display string, for example
// "4d6kh3 (6, ~~2~~, 5, 4) + 2 = 17". Dropped and rerolled dice are
// struck through, exploding dice are marked with "!". Format is a pure
// presentation transform over a RollResult; it never rolls anything.
func Format(result *RollResult) string {
	var b strings.Builder
	formatNode(&b, result.Root)
	if result.Annotation != "" {
		b.WriteString(" [")
		b.WriteString(result.Annotation)
		b.WriteString("]")
	}
	b.WriteString(" = ")
	b.WriteString(strconv.Itoa(result.Total))
	return b.String()
}

func formatNode(b *strings.Builder, node *ResultNode) {
	switch node.Type {
	case "Number":
		b.WriteString(strconv.Itoa(node.Total))

	case "Dice":
		b.WriteString(strconv.Itoa(node.Number))
		b.WriteString("d")
		b.WriteString(strconv.Itoa(node.Size))
		for _, code := range node.Mods {
			b.WriteString(code)
		}
		b.WriteString(" (")
		for i, die := range node.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatDie(die))
		}
		b.WriteString(")")
		if node.Annotation != "" {
			b.WriteString(" [")
			b.WriteString(node.Annotation)
			b.WriteString("]")
		}

	case "Paren":
		b.WriteString("(")
		formatNode(b, node.Children[0])
		b.WriteString(")")

	case "BinOp":
		formatNode(b, node.Children[0])
		b.WriteString(" ")
		b.WriteString(node.Op)
		b.WriteString(" ")
		formatNode(b, node.Children[1])
	}
}

func formatDie(die DieResult) string {
	s := strconv.Itoa(die.Value)
	if die.Exploded {
		s += "!"
	}
	if !die.Kept {
		s = "~~" + s + "~~"
	}
	return s
}
