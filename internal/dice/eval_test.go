package dice

import "testing"

func TestEvalArithmetic(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"3", 3},
		{"-5", -5},
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"10-4-3", 3},
		{"10/4", 2},
		{"-7/2", -4},
		{"7/-2", -4},
		{"-7/-2", 3},
		{"2d1+3", 5},
		{"(1d1+1)*2", 4},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			result := mustRoll(t, tc.text, Options{}, newScript())
			if result.Total != tc.want {
				t.Errorf("Roll(%q) = %d, want %d", tc.text, result.Total, tc.want)
			}
		})
	}
}

func TestFloorDiv(t *testing.T) {
	cases := []struct {
		a, b, want int
	}{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
		{6, 3, 2},
		{-6, 3, -2},
		{0, 5, 0},
	}
	for _, tc := range cases {
		if got := floorDiv(tc.a, tc.b); got != tc.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	t.Run("Literal", func(t *testing.T) {
		_, err := Roll("4/0", Options{}, newScript())
		if KindOf(err) != KindDivisionByZero {
			t.Fatalf("error = %v, want DivisionByZero", err)
		}
	})

	t.Run("RolledDivisor", func(t *testing.T) {
		// d4 lands on 1, so the divisor (1d4-1) evaluates to zero.
		_, err := Roll("1d20/(1d4-1)", Options{}, newScript(10, 1))
		if KindOf(err) != KindDivisionByZero {
			t.Fatalf("error = %v, want DivisionByZero", err)
		}
	})
}

func TestResultTreeShape(t *testing.T) {
	result := mustRoll(t, "(1d4+1)*2", Options{}, newScript(3))

	root := result.Root
	if root.Type != "BinOp" || root.Op != "*" {
		t.Fatalf("root = %+v, want * BinOp", root)
	}
	if root.Total != 8 {
		t.Errorf("root total = %d, want 8", root.Total)
	}

	paren := root.Children[0]
	if paren.Type != "Paren" || paren.Total != 4 {
		t.Fatalf("left child = %+v, want Paren with total 4", paren)
	}

	sum := paren.Children[0]
	if sum.Type != "BinOp" || sum.Op != "+" {
		t.Fatalf("grouped child = %+v, want + BinOp", sum)
	}

	diceNode := sum.Children[0]
	if diceNode.Type != "Dice" || diceNode.Number != 1 || diceNode.Size != 4 {
		t.Fatalf("dice node = %+v, want 1d4", diceNode)
	}
	if len(diceNode.Values) != 1 || diceNode.Values[0].Value != 3 {
		t.Errorf("dice values = %+v, want one die of 3", diceNode.Values)
	}

	constant := sum.Children[1]
	if constant.Type != "Number" || constant.Total != 1 {
		t.Errorf("constant node = %+v, want Number 1", constant)
	}
}

func TestDiceNodeCarriesModifierCodes(t *testing.T) {
	result := mustRoll(t, "4d6kh3rr<2", Options{}, newScript(3, 4, 5, 6))
	mods := result.Root.Mods
	want := []string{"kh3", "rr<2"}
	if len(mods) != len(want) {
		t.Fatalf("mods = %v, want %v", mods, want)
	}
	for i := range want {
		if mods[i] != want[i] {
			t.Errorf("mods[%d] = %q, want %q", i, mods[i], want[i])
		}
	}
}

func TestCollectDiceGenerationOrder(t *testing.T) {
	result := mustRoll(t, "1d4+1d6", Options{}, newScript(3, 5))
	if len(result.Dice) != 2 {
		t.Fatalf("collected %d dice, want 2", len(result.Dice))
	}
	if result.Dice[0].Sides != 4 || result.Dice[0].Value != 3 {
		t.Errorf("first die = %+v, want d4 value 3", result.Dice[0])
	}
	if result.Dice[1].Sides != 6 || result.Dice[1].Value != 5 {
		t.Errorf("second die = %+v, want d6 value 5", result.Dice[1])
	}
}

func TestRollResultAnnotation(t *testing.T) {
	withComments := Options{AllowComments: true}

	t.Run("TermAnnotationPromoted", func(t *testing.T) {
		result := mustRoll(t, "8d6 [fire]", withComments, NewSeededSource(1))
		if result.Annotation != "fire" {
			t.Errorf("annotation = %q, want %q", result.Annotation, "fire")
		}
	})

	t.Run("NestedTermAnnotationPromoted", func(t *testing.T) {
		result := mustRoll(t, "8d6 [fire] + 2", withComments, NewSeededSource(1))
		if result.Annotation != "fire" {
			t.Errorf("annotation = %q, want %q", result.Annotation, "fire")
		}
	})

	t.Run("ExpressionAnnotation", func(t *testing.T) {
		result := mustRoll(t, "1d20+5 [check]", withComments, NewSeededSource(1))
		if result.Annotation != "check" {
			t.Errorf("annotation = %q, want %q", result.Annotation, "check")
		}
	})

	t.Run("NoAnnotation", func(t *testing.T) {
		result := mustRoll(t, "1d20+5", withComments, NewSeededSource(1))
		if result.Annotation != "" {
			t.Errorf("annotation = %q, want empty", result.Annotation)
		}
	})
}

func TestExpressionIsReusable(t *testing.T) {
	expr, err := Parse("2d6", Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	first, err := expr.Roll(newScript(1, 2))
	if err != nil {
		t.Fatalf("first Roll: %v", err)
	}
	second, err := expr.Roll(newScript(5, 6))
	if err != nil {
		t.Fatalf("second Roll: %v", err)
	}
	if first.Total != 3 || second.Total != 11 {
		t.Errorf("totals = %d, %d, want 3, 11", first.Total, second.Total)
	}
}
