package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/polyhedral/d20mcp/internal/dice"
)

// ErrorPayload is the structured error carried inside tool results when a
// roll fails. Roll failures are recoverable data for the client, so they
// never surface as MCP protocol errors.
type ErrorPayload struct {
	Kind    string `json:"kind" jsonschema:"error kind: SyntaxError, RerollLimitExceeded, DivisionByZero, or InvalidModifierParameter"`
	Message string `json:"message" jsonschema:"human-readable error description"`
}

// RollInput represents the MCP tool input for a dice roll.
type RollInput struct {
	Expression    string `json:"expression" jsonschema:"dice expression to evaluate (e.g. 1d20+5, 4d6kh3)"`
	AllowComments bool   `json:"allow_comments,omitempty" jsonschema:"allow bracketed annotations such as 8d6 [fire]"`
}

// RollResult represents the MCP tool output for a dice roll.
type RollResult struct {
	Expression string        `json:"expression" jsonschema:"the expression that was evaluated"`
	Total      *int          `json:"total,omitempty" jsonschema:"numeric total of the roll"`
	Result     string        `json:"result,omitempty" jsonschema:"formatted roll string"`
	Comment    string        `json:"comment,omitempty" jsonschema:"trailing annotation, when comments are enabled"`
	Error      *ErrorPayload `json:"error,omitempty" jsonschema:"structured error when the roll failed"`
}

// DieValue represents one physical die in a roll breakdown.
type DieValue struct {
	Value    int  `json:"value" jsonschema:"face value of the die"`
	Sides    int  `json:"sides" jsonschema:"number of sides on the die"`
	Kept     bool `json:"kept" jsonschema:"whether the die counts toward the total"`
	Rerolled bool `json:"rerolled,omitempty" jsonschema:"whether the die was replaced by a reroll"`
	Exploded bool `json:"exploded,omitempty" jsonschema:"whether the die triggered an extra die"`
}

// ResultTreeNode represents one node of the evaluated expression tree.
type ResultTreeNode struct {
	Type       string            `json:"type" jsonschema:"node kind: Number, Dice, BinOp, or Paren"`
	Total      int               `json:"total" jsonschema:"numeric value of this node"`
	Number     int               `json:"number,omitempty" jsonschema:"dice count, for Dice nodes"`
	Size       int               `json:"size,omitempty" jsonschema:"die sides, for Dice nodes"`
	Op         string            `json:"op,omitempty" jsonschema:"operator symbol, for BinOp nodes"`
	Modifiers  []string          `json:"modifiers,omitempty" jsonschema:"modifier codes in declared order"`
	Values     []DieValue        `json:"values,omitempty" jsonschema:"individual die results in roll order"`
	Children   []*ResultTreeNode `json:"children,omitempty" jsonschema:"nested operations"`
	Annotation string            `json:"annotation,omitempty" jsonschema:"bracketed tag attached to this node"`
}

// RollDetailedInput represents the MCP tool input for a detailed roll.
type RollDetailedInput = RollInput

// RollDetailedResult represents the MCP tool output for a detailed roll.
type RollDetailedResult struct {
	Expression string          `json:"expression" jsonschema:"the expression that was evaluated"`
	Total      *int            `json:"total,omitempty" jsonschema:"numeric total of the roll"`
	Result     string          `json:"result,omitempty" jsonschema:"formatted roll string"`
	Comment    string          `json:"comment,omitempty" jsonschema:"trailing annotation, when comments are enabled"`
	AST        *ResultTreeNode `json:"ast,omitempty" jsonschema:"evaluated expression tree"`
	Dice       []DieValue      `json:"dice,omitempty" jsonschema:"every die across all terms in generation order"`
	Error      *ErrorPayload   `json:"error,omitempty" jsonschema:"structured error when the roll failed"`
}

// RollBatchInput represents the MCP tool input for a batch of rolls.
type RollBatchInput struct {
	Expressions   []string `json:"expressions" jsonschema:"dice expressions to evaluate in order"`
	AllowComments bool     `json:"allow_comments,omitempty" jsonschema:"allow bracketed annotations in each expression"`
}

// BatchRollResult represents the outcome for one expression in a batch.
type BatchRollResult struct {
	Expression string        `json:"expression" jsonschema:"the expression this entry corresponds to"`
	Success    bool          `json:"success" jsonschema:"whether this expression evaluated cleanly"`
	Total      *int          `json:"total,omitempty" jsonschema:"numeric total, on success"`
	Result     string        `json:"result,omitempty" jsonschema:"formatted roll string, on success"`
	Comment    string        `json:"comment,omitempty" jsonschema:"trailing annotation, when comments are enabled"`
	Error      *ErrorPayload `json:"error,omitempty" jsonschema:"structured error, on failure"`
}

// RollBatchResult represents the MCP tool output for a batch of rolls.
type RollBatchResult struct {
	Results []BatchRollResult `json:"results" jsonschema:"per-expression results in input order"`
}

// ValidateSyntaxInput represents the MCP tool input for syntax validation.
type ValidateSyntaxInput struct {
	Expression    string `json:"expression" jsonschema:"dice expression to validate"`
	AllowComments bool   `json:"allow_comments,omitempty" jsonschema:"allow bracketed annotations such as 8d6 [fire]"`
}

// ValidateSyntaxResult represents the MCP tool output for syntax validation.
type ValidateSyntaxResult struct {
	Valid      bool          `json:"valid" jsonschema:"whether the expression parsed cleanly"`
	Expression string        `json:"expression" jsonschema:"the expression that was checked"`
	Error      *ErrorPayload `json:"error,omitempty" jsonschema:"structured error when invalid"`
}

// RollTool defines the MCP tool schema for rolling dice.
func RollTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll",
		Description: "Rolls dice using RPG notation (e.g. 1d20+5, 4d6kh3, 2d20kh1+5) and returns the total with a formatted result string",
	}
}

// RollDetailedTool defines the MCP tool schema for detailed rolls.
func RollDetailedTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_detailed",
		Description: "Rolls dice and returns the full evaluated expression tree plus every individual die result, including which dice were kept, dropped, rerolled, or exploded",
	}
}

// RollBatchTool defines the MCP tool schema for batch rolls.
func RollBatchTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_batch",
		Description: "Rolls several dice expressions in one call and returns per-expression results in input order; one invalid expression does not abort the others",
	}
}

// ValidateSyntaxTool defines the MCP tool schema for syntax validation.
func ValidateSyntaxTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "validate_syntax",
		Description: "Checks dice notation for syntax errors without rolling any dice",
	}
}

// RollHandler executes a dice roll.
func RollHandler(roller Roller) mcp.ToolHandlerFor[RollInput, RollResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input RollInput) (*mcp.CallToolResult, RollResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, RollResult{}, fmt.Errorf("generate invocation id: %w", err)
		}

		result := RollResult{Expression: input.Expression}
		rolled, err := roller.Roll(input.Expression, input.AllowComments)
		if err != nil {
			result.Error = errorPayload(err)
			return CallToolResultWithMetadata(invocationID), result, nil
		}

		total := rolled.Total
		result.Total = &total
		result.Result = rolled.Rendered
		result.Comment = rolled.Annotation
		return CallToolResultWithMetadata(invocationID), result, nil
	}
}

// RollDetailedHandler executes a dice roll with a full breakdown.
func RollDetailedHandler(roller Roller) mcp.ToolHandlerFor[RollDetailedInput, RollDetailedResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input RollDetailedInput) (*mcp.CallToolResult, RollDetailedResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, RollDetailedResult{}, fmt.Errorf("generate invocation id: %w", err)
		}

		result := RollDetailedResult{Expression: input.Expression}
		rolled, err := roller.Roll(input.Expression, input.AllowComments)
		if err != nil {
			result.Error = errorPayload(err)
			return CallToolResultWithMetadata(invocationID), result, nil
		}

		total := rolled.Total
		result.Total = &total
		result.Result = rolled.Rendered
		result.Comment = rolled.Annotation
		result.AST = toTreeNode(rolled.Root)
		result.Dice = toDieValues(rolled.Dice)
		return CallToolResultWithMetadata(invocationID), result, nil
	}
}

// RollBatchHandler executes several rolls, isolating per-item failures.
func RollBatchHandler(roller Roller) mcp.ToolHandlerFor[RollBatchInput, RollBatchResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input RollBatchInput) (*mcp.CallToolResult, RollBatchResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, RollBatchResult{}, fmt.Errorf("generate invocation id: %w", err)
		}
		// An empty batch is a valid request with nothing to roll.
		results := make([]BatchRollResult, 0, len(input.Expressions))
		for _, expression := range input.Expressions {
			entry := BatchRollResult{Expression: expression}
			rolled, err := roller.Roll(expression, input.AllowComments)
			if err != nil {
				entry.Error = errorPayload(err)
				results = append(results, entry)
				continue
			}
			total := rolled.Total
			entry.Success = true
			entry.Total = &total
			entry.Result = rolled.Rendered
			entry.Comment = rolled.Annotation
			results = append(results, entry)
		}

		return CallToolResultWithMetadata(invocationID), RollBatchResult{Results: results}, nil
	}
}

// ValidateSyntaxHandler checks notation without rolling.
func ValidateSyntaxHandler(roller Roller) mcp.ToolHandlerFor[ValidateSyntaxInput, ValidateSyntaxResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ValidateSyntaxInput) (*mcp.CallToolResult, ValidateSyntaxResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, ValidateSyntaxResult{}, fmt.Errorf("generate invocation id: %w", err)
		}

		result := ValidateSyntaxResult{Expression: input.Expression}
		if err := roller.Validate(input.Expression, input.AllowComments); err != nil {
			result.Error = errorPayload(err)
			return CallToolResultWithMetadata(invocationID), result, nil
		}
		result.Valid = true
		return CallToolResultWithMetadata(invocationID), result, nil
	}
}

// errorPayload converts an engine error into its structured payload form.
func errorPayload(err error) *ErrorPayload {
	if kind := dice.KindOf(err); kind != "" {
		return &ErrorPayload{Kind: string(kind), Message: err.Error()}
	}
	return &ErrorPayload{Kind: "InternalError", Message: err.Error()}
}

func toDieValues(values []dice.DieResult) []DieValue {
	if len(values) == 0 {
		return nil
	}
	out := make([]DieValue, 0, len(values))
	for _, v := range values {
		out = append(out, DieValue{
			Value:    v.Value,
			Sides:    v.Sides,
			Kept:     v.Kept,
			Rerolled: v.Rerolled,
			Exploded: v.Exploded,
		})
	}
	return out
}

func toTreeNode(node *dice.ResultNode) *ResultTreeNode {
	if node == nil {
		return nil
	}
	out := &ResultTreeNode{
		Type:       node.Type,
		Total:      node.Total,
		Number:     node.Number,
		Size:       node.Size,
		Op:         node.Op,
		Modifiers:  node.Mods,
		Values:     toDieValues(node.Values),
		Annotation: node.Annotation,
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, toTreeNode(child))
	}
	return out
}
