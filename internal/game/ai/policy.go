// Package ai selects actions and targets for non-player combat participants.
//
// A Policy is a pure function of the WorldState snapshot plus a random
// Source, so tests can inject a scripted Source and assert exact choices.
package ai

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ascend/internal/game/dice"
)

// Anti-stuck parameters: an actor that defended this many times within the
// window is forced to attack.
const (
	StuckDefendLimit  = 3
	StuckDefendWindow = 30 * time.Second
)

// ScriptCaller runs a named script hook with numeric inputs and returns
// numeric outputs; nil outputs mean the hook had nothing to say.
type ScriptCaller interface {
	CallHookTable(hook string, fields map[string]float64) (map[string]float64, error)
}

// Profile carries per-actor policy settings taken from its template.
type Profile struct {
	// Passive actors always pass.
	Passive bool
	// Hook names a script hook returning weight multipliers; empty = none.
	Hook string
}

// Decision is the policy's choice for one actor.
type Decision struct {
	Action   Action
	TargetID string
	Strategy Strategy
	Weights  Weights
	Reason   string
}

// Policy chooses actions for non-player participants.
type Policy struct {
	src     dice.Source
	scripts ScriptCaller
	logger  *zap.Logger
}

// NewPolicy creates a Policy. scripts may be nil.
//
// Precondition: src and logger must be non-nil.
func NewPolicy(src dice.Source, scripts ScriptCaller, logger *zap.Logger) *Policy {
	return &Policy{src: src, scripts: scripts, logger: logger}
}

// Decide picks an action and target for ws.Actor.
//
// Precondition: ws.Actor must not be nil.
// Postcondition: ATTACK and USE_SKILL decisions always carry a TargetID;
// when no enemy is active the decision is PASS.
func (p *Policy) Decide(ws *WorldState, profile Profile) Decision {
	actor := ws.Actor
	if profile.Passive {
		return Decision{Action: ActionPass, Reason: "passive"}
	}
	if !ws.HasLivingEnemies(actor.ID) {
		return Decision{Action: ActionPass, Reason: "no_enemies"}
	}

	if ws.RecentActions(actor.ID, ActionDefend, StuckDefendWindow) >= StuckDefendLimit {
		target := SelectTarget(ws, actor.ID, StrategyAggressive, p.src)
		p.logger.Debug("ai anti-stuck override",
			zap.String("actor", actor.ID),
			zap.String("target", target.ID),
		)
		return Decision{Action: ActionAttack, TargetID: target.ID, Strategy: StrategyAggressive, Reason: "anti_stuck"}
	}

	w, fired := AdjustWeights(ws)
	if profile.Hook != "" && p.scripts != nil {
		w = p.applyHook(profile.Hook, ws, w)
	}

	d := Decision{Action: Sample(w, p.src), Weights: w, Reason: "weighted"}
	switch d.Action {
	case ActionAttack:
		d.Strategy = StrategyBalanced
	case ActionSkill:
		d.Strategy = StrategyPriority
	}
	if d.Strategy != "" {
		d.TargetID = SelectTarget(ws, actor.ID, d.Strategy, p.src).ID
	}

	p.logger.Debug("ai decision",
		zap.String("actor", actor.ID),
		zap.String("action", string(d.Action)),
		zap.String("target", d.TargetID),
		zap.Strings("rules", fired),
		zap.Float64("attack_weight", w.Attack),
		zap.Float64("skill_weight", w.Skill),
		zap.Float64("defend_weight", w.Defend),
	)
	return d
}

// applyHook scales w by the multipliers returned from hook. Missing or
// non-finite multipliers leave the weight unchanged; negative ones zero it.
func (p *Policy) applyHook(hook string, ws *WorldState, w Weights) Weights {
	actor := ws.Actor
	low := 0
	for _, e := range ws.EnemiesOf(actor.ID) {
		if e.HPPercent() <= FinishingPercent {
			low++
		}
	}
	out, err := p.scripts.CallHookTable(hook, map[string]float64{
		"hp_pct":      actor.HPPercent(),
		"stamina_pct": actor.StaminaPercent(),
		"stamina":     float64(actor.Stamina),
		"mana":        float64(actor.Mana),
		"enemies":     float64(len(ws.EnemiesOf(actor.ID))),
		"low_enemies": float64(low),
		"attack":      w.Attack,
		"skill":       w.Skill,
		"defend":      w.Defend,
	})
	if err != nil {
		p.logger.Warn("ai hook failed", zap.String("hook", hook), zap.Error(err))
		return w
	}
	scale := func(v float64, key string) float64 {
		m, ok := out[key]
		if !ok || math.IsNaN(m) || math.IsInf(m, 0) {
			return v
		}
		return v * max(m, 0)
	}
	w.Attack = scale(w.Attack, "attack")
	w.Skill = scale(w.Skill, "skill")
	w.Defend = scale(w.Defend, "defend")
	if actor.Stamina < AttackStaminaCost {
		w.Attack = 0
	}
	if actor.Mana < SkillManaCost {
		w.Skill = 0
	}
	return w
}
