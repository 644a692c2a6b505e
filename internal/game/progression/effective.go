// Package progression turns a persisted character record into derived combat
// and utility statistics. Every function is pure: no I/O, no clocks, no
// randomness, and no mutation of its inputs.
package progression

import (
	"math"

	"github.com/cory-johannsen/ascend/internal/game/character"
	"github.com/cory-johannsen/ascend/internal/game/wide"
)

const (
	// BaseStatCap is the ceiling of a visible base attribute.
	BaseStatCap = 100
	// TierValue is the effective-stat bonus granted by each tier.
	TierValue = 50
	// SoftCapThreshold is the raw effective value past which growth becomes logarithmic.
	SoftCapThreshold = 1000

	bonusWeight    = 20
	paragonWeight  = 10
	prestigeWeight = 0.1
	softCapWeight  = 100
)

// CalculateTotalBaseStats applies the race modifier table to base and clamps
// every attribute to [0, BaseStatCap].
func CalculateTotalBaseStats(base character.Stats, race character.Race) character.Stats {
	var out character.Stats
	for _, a := range character.AllAttributes {
		out[a] = clampInt(base[a]+RaceModifier(race, a), 0, BaseStatCap)
	}
	return out
}

// CalculateEffectiveStat is the infinite-scaling formula.
//
//	capped   = min(base, 100)
//	scaled   = (capped + 50·tier + 20·log10(bonus+1) + 10·log10(paragon+1)) · classScaling
//	raw      = scaled · (1 + 0.1·prestige)
//	result   = raw                          if raw <= 1000
//	         = 1000 + 100·log10(raw − 999)  otherwise
//
// Postcondition: the result is finite and non-decreasing in tier, bonus,
// paragonPoints and prestigeLevel.
func CalculateEffectiveStat(base, tier int, bonus, paragonPoints wide.Int, prestigeLevel int, classScalingFactor float64) float64 {
	capped := float64(min(base, BaseStatCap))
	tierBonus := float64(max(tier, 0)) * TierValue

	var bonusEffect, paragonEffect float64
	if bonus.Sign() > 0 {
		bonusEffect = bonus.Log10p1() * bonusWeight
	}
	if paragonPoints.Sign() > 0 {
		paragonEffect = paragonPoints.Log10p1() * paragonWeight
	}

	scaled := (capped + tierBonus + bonusEffect + paragonEffect) * classScalingFactor
	raw := scaled * (1 + float64(max(prestigeLevel, 0))*prestigeWeight)
	if raw > SoftCapThreshold {
		return SoftCapThreshold + math.Log10(raw-(SoftCapThreshold-1))*softCapWeight
	}
	return raw
}

// EffectiveStats computes the effective value of every attribute of c.
//
// Precondition: c must not be nil.
func EffectiveStats(c *character.Attributes) [character.NumAttributes]float64 {
	total := CalculateTotalBaseStats(c.Base, c.Race)
	var out [character.NumAttributes]float64
	for _, a := range character.AllAttributes {
		out[a] = CalculateEffectiveStat(
			total[a],
			c.Tiers[a],
			c.Bonuses[a],
			c.ParagonFor(a),
			c.PrestigeLevel,
			ClassScalingFactor(c.Class, a),
		)
	}
	return out
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
