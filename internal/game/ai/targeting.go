package ai

import "github.com/cory-johannsen/ascend/internal/game/dice"

// Strategy names a target selection rule.
type Strategy string

const (
	// StrategyAggressive picks the enemy with the lowest current HP.
	StrategyAggressive Strategy = "aggressive"
	// StrategyPriority picks player-team enemies first, then the highest current HP.
	StrategyPriority Strategy = "priority"
	// StrategyBalanced picks at random, favoring wounded and player-team enemies.
	StrategyBalanced Strategy = "balanced"
)

// SelectTarget returns the enemy of uid chosen by strategy, or nil when uid has
// no active enemies. Only StrategyBalanced draws from src.
//
// Postcondition: ties are broken by order in ws.Combatants.
func SelectTarget(ws *WorldState, uid string, strategy Strategy, src dice.Source) *CombatantState {
	enemies := ws.EnemiesOf(uid)
	if len(enemies) == 0 {
		return nil
	}
	switch strategy {
	case StrategyAggressive:
		best := enemies[0]
		for _, e := range enemies[1:] {
			if e.HP < best.HP {
				best = e
			}
		}
		return best
	case StrategyPriority:
		pool := enemies
		var players []*CombatantState
		for _, e := range enemies {
			if e.Team == TeamPlayer {
				players = append(players, e)
			}
		}
		if len(players) > 0 {
			pool = players
		}
		best := pool[0]
		for _, e := range pool[1:] {
			if e.HP > best.HP {
				best = e
			}
		}
		return best
	default:
		return balancedTarget(enemies, src)
	}
}

func balancedWeight(c *CombatantState) float64 {
	w := (1 - c.HPPercent()/100) + 0.25
	if w < 0.25 {
		w = 0.25
	}
	if c.Team == TeamPlayer {
		w *= 2
	}
	return w
}

func balancedTarget(enemies []*CombatantState, src dice.Source) *CombatantState {
	total := 0.0
	for _, e := range enemies {
		total += balancedWeight(e)
	}
	r := src.Float64() * total
	for _, e := range enemies {
		w := balancedWeight(e)
		if r < w {
			return e
		}
		r -= w
	}
	return enemies[len(enemies)-1]
}
