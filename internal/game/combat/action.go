package combat

import (
	"fmt"
	"time"
)

// ActionType names what a participant does on its turn.
type ActionType string

const (
	ActionAttack   ActionType = "ATTACK"
	ActionDefend   ActionType = "DEFEND"
	ActionFlee     ActionType = "FLEE"
	ActionUseItem  ActionType = "USE_ITEM"
	ActionUseSkill ActionType = "USE_SKILL"
	ActionPass     ActionType = "PASS"
)

// Resource costs and action constants.
const (
	AttackStaminaCost  = 5
	SkillManaCost      = 10
	DefendStaminaGain  = 3
	ItemHealAmount     = 25
	DefendingModifier  = 0.5
	BlockModifier      = 0.5
	SkillMultiplier    = 1.5
	AttackVariance     = 0.10
	SkillVariance      = 0.05
	MitigationPerLevel = 10.0
)

// Action is a single combat action submitted by a player or chosen by the AI.
type Action struct {
	Type      ActionType
	TargetID  string
	ItemID    string
	SkillID   string
	Timestamp time.Time
}

// ParseActionType maps a wire name to an ActionType.
func ParseActionType(s string) (ActionType, error) {
	switch t := ActionType(s); t {
	case ActionAttack, ActionDefend, ActionFlee, ActionUseItem, ActionUseSkill, ActionPass:
		return t, nil
	default:
		return "", fmt.Errorf("unknown action type %q", s)
	}
}

// targeted reports whether t needs an opposing target.
func (t ActionType) targeted() bool {
	return t == ActionAttack || t == ActionUseSkill
}

// checkResources returns an INSUFFICIENT_RESOURCES error when actor cannot pay for t.
func checkResources(actor *Participant, t ActionType) error {
	switch t {
	case ActionAttack:
		if actor.Stamina < AttackStaminaCost {
			return insufficientResources("%s needs %d stamina to attack, has %d", actor.Name, AttackStaminaCost, actor.Stamina)
		}
	case ActionUseSkill:
		if actor.Mana < SkillManaCost {
			return insufficientResources("%s needs %d mana to use a skill, has %d", actor.Name, SkillManaCost, actor.Mana)
		}
	}
	return nil
}
