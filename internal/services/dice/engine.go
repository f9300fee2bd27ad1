package dice

import (
	"fmt"

	"github.com/dicetray/dicetray/internal/dependencies/random"
	"github.com/dicetray/dicetray/internal/model"
)

// maxDice bounds the size of a single roll, for notation expansion and for
// direct requests alike
const maxDice = 100

// sideCounts maps each supported die type to its number of sides
var sideCounts = map[model.DieType]int{
	model.D4:   4,
	model.D6:   6,
	model.D8:   8,
	model.D10:  10,
	model.D12:  12,
	model.D20:  20,
	model.D100: 100,
}

// Sides returns the number of sides for a die type, and whether the type is known
func Sides(die model.DieType) (int, bool) {
	sides, ok := sideCounts[die]
	return sides, ok
}

// Result is the outcome of rolling a set of dice. Dice preserves the
// requested order; Total is the sum of all values.
type Result struct {
	Total int
	Dice  []model.Die
}

// Engine rolls dice. It is pure apart from the injected random source, which
// is deliberately non-cryptographic: fairness here only needs to be good
// enough for tabletop use.
type Engine struct {
	random random.Random
}

// New creates a new dice Engine
func New(random random.Random) *Engine {
	return &Engine{random: random}
}

// Roll rolls each requested die in order and totals the values. Each value
// is uniform in [1, sides]. An empty request, an oversized request or an
// unknown die type fails without rolling anything.
func (e *Engine) Roll(dice []model.DieType) (*Result, error) {
	if len(dice) == 0 {
		return nil, model.ErrNoDice
	}
	if len(dice) > maxDice {
		return nil, fmt.Errorf("%w: at most %d", model.ErrTooManyDice, maxDice)
	}

	for _, die := range dice {
		if _, ok := sideCounts[die]; !ok {
			return nil, fmt.Errorf("%w: %q", model.ErrInvalidDieType, die)
		}
	}

	result := &Result{Dice: make([]model.Die, 0, len(dice))}
	for _, die := range dice {
		sides := sideCounts[die]
		value := e.random.Intn(sides) + 1
		result.Dice = append(result.Dice, model.Die{Die: die, Value: value})
		result.Total += value
	}
	return result, nil
}
