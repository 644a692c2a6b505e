// Package resource models a participant's HP, mana and stamina pools and their
// lazy, time-based regeneration.
package resource

import (
	"errors"
	"math"
	"time"
)

// ErrNotFound is returned by pool sources that hold no pool for a participant.
var ErrNotFound = errors.New("resource pool not found")

// Rates are per-second regeneration rates.
type Rates struct {
	HP      float64
	Mana    float64
	Stamina float64
}

// Pool is the persisted resource state of one participant.
//
// Invariant: 0 <= HP <= MaxHP, 0 <= Mana <= MaxMana, 0 <= Stamina <= MaxStamina
// once Normalize or Regenerate has run.
type Pool struct {
	ParticipantID string
	HP            int64
	MaxHP         int64
	Mana          int64
	MaxMana       int64
	Stamina       int64
	MaxStamina    int64
	Regen         Rates
	LastRegen     time.Time
}

// Normalize clamps every current value into [0, max] and floors every max at 1.
func (p *Pool) Normalize() {
	p.MaxHP = max(p.MaxHP, 1)
	p.MaxMana = max(p.MaxMana, 1)
	p.MaxStamina = max(p.MaxStamina, 1)
	p.HP = clamp(p.HP, 0, p.MaxHP)
	p.Mana = clamp(p.Mana, 0, p.MaxMana)
	p.Stamina = clamp(p.Stamina, 0, p.MaxStamina)
}

// Regenerate applies regeneration for the time elapsed between LastRegen and now.
// Whole points are granted per resource; LastRegen advances to now. A now earlier
// than LastRegen is ignored, so the clock never runs backwards.
//
// Postcondition: the pool is normalized and LastRegen >= its previous value.
func (p *Pool) Regenerate(now time.Time) {
	defer p.Normalize()
	if p.LastRegen.IsZero() {
		p.LastRegen = now
		return
	}
	if !now.After(p.LastRegen) {
		return
	}
	elapsed := now.Sub(p.LastRegen).Seconds()
	p.HP = saturatingAdd(p.HP, gain(elapsed, p.Regen.HP))
	p.Mana = saturatingAdd(p.Mana, gain(elapsed, p.Regen.Mana))
	p.Stamina = saturatingAdd(p.Stamina, gain(elapsed, p.Regen.Stamina))
	p.LastRegen = now
}

func gain(seconds, rate float64) int64 {
	if rate <= 0 || seconds <= 0 {
		return 0
	}
	g := math.Floor(seconds * rate)
	if g >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(g)
}

func saturatingAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func clamp(v, lo, hi int64) int64 {
	return max(lo, min(v, hi))
}
