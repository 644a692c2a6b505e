package progression

import (
	"math"

	"github.com/cory-johannsen/ascend/internal/game/character"
	"github.com/cory-johannsen/ascend/internal/game/wide"
)

// Percentage and rate caps.
const (
	MaxCriticalChance  = 75.0
	MaxCriticalDamage  = 500.0
	MaxDodgeChance     = 50.0
	MaxBlockChance     = 40.0
	MaxHPRegen         = 500.0
	MaxManaRegen       = 250.0
	MaxStaminaRegen    = 250.0
	MaxSpeedMultiplier = 3.0
	MaxItemFindBonus   = 300.0
	MaxExperienceBonus = 500.0
)

// CombatStats are the combat-facing derived values. Chances and CriticalDamage
// are percentages.
type CombatStats struct {
	PhysicalDamage  float64
	MagicalDamage   float64
	PhysicalDefense float64
	MagicalDefense  float64
	CriticalChance  float64
	CriticalDamage  float64
	DodgeChance     float64
	BlockChance     float64
}

// Resources are the resource pool maxima. Each is >= 1.
type Resources struct {
	MaxHP      wide.Int
	MaxMana    wide.Int
	MaxStamina wide.Int
}

// RegenRates are per-second regeneration rates.
type RegenRates struct {
	HP      float64
	Mana    float64
	Stamina float64
}

// Utility holds non-combat multipliers; bonuses are percentages.
type Utility struct {
	MoveSpeed       float64
	AttackSpeed     float64
	CastSpeed       float64
	ItemFindBonus   float64
	ExperienceBonus float64
}

// DerivedStats is the full bundle computed from a character record. It is
// ephemeral and never persisted.
type DerivedStats struct {
	Effective   [character.NumAttributes]float64
	Combat      CombatStats
	Resources   Resources
	Regen       RegenRates
	Utility     Utility
	PowerRating wide.Int
}

// EffectiveOf returns the effective value of attribute a.
func (d DerivedStats) EffectiveOf(a character.Attribute) float64 {
	return d.Effective[a]
}

// CalculateDerivedStats computes every derived statistic for c.
//
// Precondition: c must not be nil.
// Postcondition: every percentage is clamped to its cap; every resource maximum is >= 1.
func CalculateDerivedStats(c *character.Attributes) DerivedStats {
	e := EffectiveStats(c)
	str, dex := e[character.Strength], e[character.Dexterity]
	intl, wis := e[character.Intelligence], e[character.Wisdom]
	con, cha := e[character.Constitution], e[character.Charisma]

	level := float64(max(c.Level, 1))
	prestige := max(c.PrestigeLevel, 0)
	prestigeMult := int64(prestige) + 1

	cs := CombatStats{
		PhysicalDamage:  2*str + 0.5*dex + level,
		MagicalDamage:   2*intl + 0.5*wis + level,
		PhysicalDefense: 1.5*con + 0.5*str + level,
		MagicalDefense:  1.5*wis + 0.5*intl + level,
		CriticalChance:  clampFloat(5+0.05*dex+0.02*cha, 0, MaxCriticalChance),
		CriticalDamage:  clampFloat(150+0.1*str, 0, MaxCriticalDamage),
		DodgeChance:     clampFloat(0.04*dex, 0, MaxDodgeChance),
		BlockChance:     clampFloat(0.03*con+0.01*str, 0, MaxBlockChance),
	}

	res := Resources{
		MaxHP:      resourceMax(100+10*con+20*level, prestigeMult),
		MaxMana:    resourceMax(50+8*intl+4*wis+10*level, prestigeMult),
		MaxStamina: resourceMax(100+5*con+3*dex+5*level, prestigeMult),
	}

	regen := RegenRates{
		HP:      clampFloat(0.1*con+0.05*level, 0, MaxHPRegen),
		Mana:    clampFloat(0.1*wis+0.05*intl, 0, MaxManaRegen),
		Stamina: clampFloat(0.1*con+0.05*dex, 0, MaxStaminaRegen),
	}

	util := Utility{
		MoveSpeed:       clampFloat(1+0.001*dex, 0, MaxSpeedMultiplier),
		AttackSpeed:     clampFloat(1+0.0015*dex, 0, MaxSpeedMultiplier),
		CastSpeed:       clampFloat(1+0.0015*intl, 0, MaxSpeedMultiplier),
		ItemFindBonus:   clampFloat(0.1*cha, 0, MaxItemFindBonus),
		ExperienceBonus: clampFloat(0.05*wis+0.05*cha+10*float64(prestige), 0, MaxExperienceBonus),
	}

	var attrSum float64
	for _, v := range e {
		attrSum += v
	}
	power := wide.FromFloat(attrSum*10 + cs.PhysicalDamage + cs.MagicalDamage + cs.PhysicalDefense + cs.MagicalDefense).
		Add(wide.New(100 * int64(level))).
		MulInt64(prestigeMult)

	return DerivedStats{
		Effective:   e,
		Combat:      cs,
		Resources:   res,
		Regen:       regen,
		Utility:     util,
		PowerRating: power,
	}
}

// resourceMax floors base at 1 and multiplies by the prestige multiplier.
func resourceMax(base float64, prestigeMult int64) wide.Int {
	floored := wide.FromFloat(math.Floor(base)).Max(wide.New(1))
	return floored.MulInt64(max(prestigeMult, 1))
}

// CanPrestige reports whether c may prestige: level >= 500 and fewer prestiges
// taken than floor(level / 500).
func CanPrestige(c *character.Attributes) bool {
	return c.Level >= PrestigeLevelRequirement && c.PrestigeLevel < c.Level/PrestigeLevelRequirement
}

// HasParagonUnlocked reports whether c has reached the paragon level.
func HasParagonUnlocked(c *character.Attributes) bool {
	return c.Level >= ParagonLevelRequirement
}
