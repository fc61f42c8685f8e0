package track

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrNoTemplate means no authored tile template exists for a turn type.
// It is a content error, not a runtime condition.
var ErrNoTemplate = errors.New("no tile template for turn type")

// TemplateCatalog lists the authored tile templates available per turn type.
type TemplateCatalog struct {
	byTurn map[TurnType][]string
}

// NewTemplateCatalog builds a catalog from template names grouped by turn type.
func NewTemplateCatalog(straight, left, right []string) *TemplateCatalog {
	return &TemplateCatalog{
		byTurn: map[TurnType][]string{
			Straight:  straight,
			LeftTurn:  left,
			RightTurn: right,
		},
	}
}

// Validate checks that every turn type has at least one template.
func (c *TemplateCatalog) Validate() error {
	for _, turn := range []TurnType{Straight, LeftTurn, RightTurn} {
		if len(c.byTurn[turn]) == 0 {
			return fmt.Errorf("%w: %s", ErrNoTemplate, turn)
		}
	}
	return nil
}

// Pick draws a random template for turn.
func (c *TemplateCatalog) Pick(turn TurnType, rng *rand.Rand) (string, error) {
	candidates := c.byTurn[turn]
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoTemplate, turn)
	}
	return candidates[rng.IntN(len(candidates))], nil
}
