package ai

import "github.com/cory-johannsen/ascend/internal/game/dice"

// Action is a choice the policy can make. Values match the combat action names.
type Action string

const (
	ActionAttack Action = "ATTACK"
	ActionSkill  Action = "USE_SKILL"
	ActionDefend Action = "DEFEND"
	ActionPass   Action = "PASS"
)

// Weights holds the relative likelihood of each weighted action.
type Weights struct {
	Attack float64
	Skill  float64
	Defend float64
}

// BaseWeights are the weights before any adjustment.
var BaseWeights = Weights{Attack: 0.4, Skill: 0.2, Defend: 0.4}

// Total returns the sum of all weights.
func (w Weights) Total() float64 { return w.Attack + w.Skill + w.Defend }

// Resource thresholds consulted by the weight rules.
const (
	HighStaminaPercent = 70
	LowStaminaPercent  = 30
	LowHealthPercent   = 30
	HighHealthPercent  = 80
	FinishingPercent   = 25
	AttackStaminaCost  = 5
	SkillManaCost      = 10
)

type weightRule struct {
	name    string
	applies func(ws *WorldState) bool
	apply   func(w *Weights)
}

// weightRules are applied in order. Additive rules run before the rules that
// zero a weight, so an unaffordable action never regains weight.
var weightRules = []weightRule{
	{
		name:    "high_stamina",
		applies: func(ws *WorldState) bool { return ws.Actor.StaminaPercent() >= HighStaminaPercent },
		apply:   func(w *Weights) { w.Attack += 0.2 },
	},
	{
		name:    "low_stamina",
		applies: func(ws *WorldState) bool { return ws.Actor.StaminaPercent() <= LowStaminaPercent },
		apply:   func(w *Weights) { w.Defend += 0.3 },
	},
	{
		name:    "low_health",
		applies: func(ws *WorldState) bool { return ws.Actor.HPPercent() <= LowHealthPercent },
		apply:   func(w *Weights) { w.Defend += 0.3 },
	},
	{
		name:    "high_health",
		applies: func(ws *WorldState) bool { return ws.Actor.HPPercent() >= HighHealthPercent },
		apply:   func(w *Weights) { w.Attack += 0.2 },
	},
	{
		name: "finishing_blow",
		applies: func(ws *WorldState) bool {
			for _, e := range ws.EnemiesOf(ws.Actor.ID) {
				if e.HPPercent() <= FinishingPercent {
					return true
				}
			}
			return false
		},
		apply: func(w *Weights) { w.Attack += 0.3 },
	},
	{
		name:    "no_stamina",
		applies: func(ws *WorldState) bool { return ws.Actor.Stamina < AttackStaminaCost },
		apply:   func(w *Weights) { w.Attack = 0 },
	},
	{
		name:    "no_mana",
		applies: func(ws *WorldState) bool { return ws.Actor.Mana < SkillManaCost },
		apply:   func(w *Weights) { w.Skill = 0 },
	},
}

// AdjustWeights applies every matching rule to BaseWeights and returns the
// result with the names of the rules that fired.
//
// Precondition: ws.Actor must not be nil.
func AdjustWeights(ws *WorldState) (Weights, []string) {
	w := BaseWeights
	var fired []string
	for _, r := range weightRules {
		if r.applies(ws) {
			r.apply(&w)
			fired = append(fired, r.name)
		}
	}
	return w, fired
}

// Sample picks an action proportionally to w using a single draw from src.
//
// Postcondition: Returns ActionPass when the total weight is not positive.
func Sample(w Weights, src dice.Source) Action {
	total := w.Total()
	if total <= 0 {
		return ActionPass
	}
	r := src.Float64() * total
	table := []struct {
		action Action
		weight float64
	}{
		{ActionAttack, w.Attack},
		{ActionSkill, w.Skill},
		{ActionDefend, w.Defend},
	}
	var last Action = ActionPass
	for _, entry := range table {
		if entry.weight <= 0 {
			continue
		}
		last = entry.action
		if r < entry.weight {
			return entry.action
		}
		r -= entry.weight
	}
	return last
}
