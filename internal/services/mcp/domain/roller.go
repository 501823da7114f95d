package domain

import (
	"github.com/polyhedral/d20mcp/internal/dice"
	"github.com/polyhedral/d20mcp/internal/platform/random"
)

// Roller is the engine capability consumed by tool handlers. Keeping the
// surface this narrow lets tests substitute seeded or failing engines
// without touching handler wiring.
type Roller interface {
	// Roll parses and evaluates notation, drawing fresh randomness.
	Roll(expression string, allowComments bool) (*dice.RollResult, error)
	// Validate checks notation without consuming any randomness.
	Validate(expression string, allowComments bool) error
}

// NewRoller returns the production roller. Each evaluation seeds its own
// deterministic source from crypto/rand, so concurrent tool calls never
// share modifier-resolution or randomness state.
func NewRoller() Roller {
	return engineRoller{}
}

type engineRoller struct{}

func (engineRoller) Roll(expression string, allowComments bool) (*dice.RollResult, error) {
	seed, err := random.NewSeed()
	if err != nil {
		return nil, err
	}
	return dice.Roll(expression, dice.Options{AllowComments: allowComments}, dice.NewSeededSource(seed))
}

func (engineRoller) Validate(expression string, allowComments bool) error {
	return dice.Validate(expression, dice.Options{AllowComments: allowComments})
}
