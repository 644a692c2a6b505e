package combat

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/ascend/internal/game/dice"
)

// mitigated reduces raw by defense / (defense + level*10). Level is floored at
// 1 so the reduction is always below 100%.
func mitigated(raw, defense float64, level int) float64 {
	defense = max(defense, 0)
	reduction := defense / (defense + float64(max(level, 1))*MitigationPerLevel)
	return raw * (1 - reduction)
}

// executeAction resolves a validated action for actor against target, which
// is nil for untargeted actions.
//
// Precondition: actor is active, resources for a.Type are available, and
// target is an active opponent when a.Type is ATTACK or USE_SKILL.
// Postcondition: every participant's resources stay within [0, max].
func executeAction(s *Session, roller *dice.Roller, actor, target *Participant, a Action) CombatResult {
	res := CombatResult{ActorID: actor.ID, Action: a.Type}
	if target != nil {
		res.TargetID = target.ID
	}

	switch a.Type {
	case ActionAttack:
		resolveAttack(roller, actor, target, &res)
	case ActionUseSkill:
		resolveSkill(roller, actor, target, &res)
	case ActionDefend:
		if actor.AddBuff(Buff{ID: DefendingBuffID, Name: "Defending", Duration: 1, Modifier: DefendingModifier}) {
			res.Message = fmt.Sprintf("%s takes a defensive stance.", actor.Name)
		} else {
			res.Message = fmt.Sprintf("%s holds a defensive stance.", actor.Name)
		}
		res.StaminaDelta = actor.AdjustStamina(DefendStaminaGain)
	case ActionFlee:
		actor.Status = StatusFled
		res.Message = fmt.Sprintf("%s flees from combat!", actor.Name)
	case ActionUseItem:
		res.Healing = actor.Heal(ItemHealAmount)
		res.TargetID = actor.ID
		res.Message = fmt.Sprintf("%s uses an item and recovers %d HP.", actor.Name, res.Healing)
	case ActionPass:
		res.Message = fmt.Sprintf("%s waits.", actor.Name)
	}

	s.appendLog(actor.ID, a.Type, res.TargetID, res.Message, a.Timestamp)
	return res
}

func resolveAttack(roller *dice.Roller, actor, target *Participant, res *CombatResult) {
	weapon := roller.Between("weapon", actor.Stats.WeaponMin, actor.Stats.WeaponMax)
	dmg := mitigated(float64(weapon)+actor.Stats.Attack, target.Stats.Defense, actor.Level)
	dmg *= roller.Variance("attack variance", AttackVariance)
	if roller.Chance("critical", actor.Stats.CriticalChance) {
		dmg *= actor.Stats.CriticalDamage / 100
		res.Critical = true
	}
	res.StaminaDelta = actor.AdjustStamina(-AttackStaminaCost)

	if roller.Chance("dodge", target.Stats.DodgeChance) {
		res.Dodged = true
		res.Message = fmt.Sprintf("%s dodges %s's attack!", target.Name, actor.Name)
		return
	}
	if roller.Chance("block", target.Stats.BlockChance) {
		dmg *= BlockModifier
		res.Blocked = true
	}
	if b, ok := target.Buff(DefendingBuffID); ok {
		dmg *= b.Modifier
	}

	res.Damage = roundDamage(dmg)
	target.ApplyDamage(res.Damage)
	res.Message = attackMessage(actor, target, res, "attacks")
}

func resolveSkill(roller *dice.Roller, actor, target *Participant, res *CombatResult) {
	dmg := mitigated(actor.Stats.MagicalAttack*SkillMultiplier, target.Stats.MagicalDefense, actor.Level)
	dmg *= roller.Variance("skill variance", SkillVariance)
	if roller.Chance("skill critical", actor.Stats.CriticalChance/2) {
		dmg *= actor.Stats.CriticalDamage / 100
		res.Critical = true
	}
	if b, ok := target.Buff(DefendingBuffID); ok {
		dmg *= b.Modifier
	}
	res.ManaDelta = actor.AdjustMana(-SkillManaCost)

	res.Damage = roundDamage(dmg)
	target.ApplyDamage(res.Damage)
	res.Message = attackMessage(actor, target, res, "casts a spell at")
}

// roundDamage rounds dmg to an int in [1, MaxInt32].
func roundDamage(dmg float64) int {
	if math.IsNaN(dmg) || dmg < 1 {
		return 1
	}
	return int(math.Round(min(dmg, math.MaxInt32)))
}

func attackMessage(actor, target *Participant, res *CombatResult, verb string) string {
	msg := fmt.Sprintf("%s %s %s for %d damage", actor.Name, verb, target.Name, res.Damage)
	if res.Critical {
		msg += " (critical)"
	}
	if res.Blocked {
		msg += " (blocked)"
	}
	msg += "."
	if target.Status == StatusDefeated {
		msg += fmt.Sprintf(" %s is defeated!", target.Name)
	}
	return msg
}
