package dice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dicetray/dicetray/internal/model"
)

// ParseNotation expands a whitespace-separated dice expression into a die
// list, e.g. "2d6 d20" -> [d6 d6 d20]. Each term is an optional count
// followed by a die type. Order is preserved.
func ParseNotation(notation string) ([]model.DieType, error) {
	fields := strings.Fields(notation)
	if len(fields) == 0 {
		return nil, model.ErrNoDice
	}

	var dice []model.DieType
	for _, field := range fields {
		count, die, err := parseTerm(field)
		if err != nil {
			return nil, err
		}
		// Compared this way round so a huge count cannot overflow the sum
		if count > maxDice-len(dice) {
			return nil, fmt.Errorf("%w: at most %d", model.ErrTooManyDice, maxDice)
		}
		for i := 0; i < count; i++ {
			dice = append(dice, die)
		}
	}
	return dice, nil
}

// parseTerm parses a single term like "d20" or "2d6" into a count and die type
func parseTerm(term string) (int, model.DieType, error) {
	idx := strings.IndexByte(strings.ToLower(term), 'd')
	if idx < 0 {
		return 0, "", fmt.Errorf("%w: %q", model.ErrInvalidDieType, term)
	}

	count := 1
	if idx > 0 {
		n, err := strconv.Atoi(term[:idx])
		if err != nil || n < 1 {
			return 0, "", fmt.Errorf("%w: %q", model.ErrInvalidDieType, term)
		}
		count = n
	}

	die := model.DieType(strings.ToLower(term[idx:]))
	if _, ok := sideCounts[die]; !ok {
		return 0, "", fmt.Errorf("%w: %q", model.ErrInvalidDieType, term)
	}
	return count, die, nil
}
