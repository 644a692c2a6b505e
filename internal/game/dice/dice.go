// Package dice provides the randomness abstraction, dice expressions and the
// audited roller used by the combat core. Every random decision in combat goes
// through a Roller so it is logged with its inputs and result.
package dice

import (
	"fmt"
	"strings"
)

// RollResult records one evaluated expression: each die and the flat modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total is the sum of the dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll for audit logs, e.g. "2d6+3: 4+5 (+3) = 12".
func (r RollResult) String() string {
	parts := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		parts[i] = fmt.Sprint(d)
	}
	expr := r.Expression
	if expr == "" {
		expr = "roll"
	}
	return fmt.Sprintf("%s: %s (%+d) = %d", expr, strings.Join(parts, "+"), r.Modifier, r.Total())
}

// Roll evaluates expr against src.
//
// Precondition: expr must come from Parse or Range; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count and the total lies within expr.Bounds().
func Roll(expr Expression, src Source) RollResult {
	result := RollResult{Expression: expr.Raw, Dice: make([]int, expr.Count), Modifier: expr.Modifier}
	for i := range result.Dice {
		result.Dice[i] = src.Intn(expr.Sides) + 1
	}
	return result
}
