package combat

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ascend/internal/game/character"
	"github.com/cory-johannsen/ascend/internal/game/opponent"
	"github.com/cory-johannsen/ascend/internal/game/progression"
	"github.com/cory-johannsen/ascend/internal/game/resource"
	"github.com/cory-johannsen/ascend/internal/game/wide"
)

// CharacterStatsSource loads persisted character attributes.
type CharacterStatsSource interface {
	GetCharacterStats(ctx context.Context, characterID string) (*character.Attributes, error)
}

// ResourcePoolSource loads a participant's resource pool with regeneration
// already applied. A missing pool is reported with resource.ErrNotFound.
type ResourcePoolSource interface {
	GetResourcePool(ctx context.Context, participantID string) (*resource.Pool, error)
}

// StaticOpponentSource resolves static opponent templates by id.
type StaticOpponentSource interface {
	GetOpponent(templateID string) (*opponent.Template, error)
}

// DefaultAccuracy is the accuracy given to every character participant.
const DefaultAccuracy = 95

// StatsAdapter builds Participants from characters or opponent templates.
type StatsAdapter struct {
	characters CharacterStatsSource
	pools      ResourcePoolSource
	opponents  StaticOpponentSource
	logger     *zap.Logger
}

// NewStatsAdapter creates a StatsAdapter.
//
// Precondition: all arguments must be non-nil.
func NewStatsAdapter(characters CharacterStatsSource, pools ResourcePoolSource, opponents StaticOpponentSource, logger *zap.Logger) *StatsAdapter {
	return &StatsAdapter{characters: characters, pools: pools, opponents: opponents, logger: logger}
}

// Participant builds the participant for id on team. Ids carrying the opponent
// template prefix are resolved as templates; everything else as a character.
//
// Postcondition: never returns nil. Any lookup failure yields the fallback
// participant with Degraded set.
func (a *StatsAdapter) Participant(ctx context.Context, id string, team Team) *Participant {
	if opponent.IsTemplateID(id) {
		tmpl, err := a.opponents.GetOpponent(id)
		if err != nil {
			return a.fallback(id, team, "opponent template lookup failed", err)
		}
		return FromTemplate(tmpl, team)
	}

	attrs, err := a.characters.GetCharacterStats(ctx, id)
	if err != nil {
		return a.fallback(id, team, "character stats lookup failed", err)
	}
	if err := attrs.Validate(); err != nil {
		return a.fallback(id, team, "character stats invalid", err)
	}

	pool, err := a.pools.GetResourcePool(ctx, id)
	if err != nil && !errors.Is(err, resource.ErrNotFound) {
		return a.fallback(id, team, "resource pool lookup failed", err)
	}
	if err != nil {
		pool = nil
	}

	p := a.fromCharacter(attrs, team)
	if pool != nil {
		p.HP = clampInt(saturate(pool.HP), 0, p.MaxHP)
		p.Mana = clampInt(saturate(pool.Mana), 0, p.MaxMana)
		p.Stamina = clampInt(saturate(pool.Stamina), 0, p.MaxStamina)
	}
	if p.HP == 0 {
		// A character at 0 HP enters combat already defeated.
		p.Status = StatusDefeated
	}
	return p
}

// fromCharacter maps derived stats onto a participant at full resources.
func (a *StatsAdapter) fromCharacter(c *character.Attributes, team Team) *Participant {
	d := progression.CalculateDerivedStats(c)
	minDmg, maxDmg := characterWeaponRange(c.Level, progression.WeaponDamageFactor(c.Class))

	p := &Participant{
		ID:         c.ID,
		Name:       c.Name,
		Team:       team,
		Status:     StatusActive,
		Level:      c.Level,
		MaxHP:      a.resourceMax(c.ID, "hp", d.Resources.MaxHP),
		MaxMana:    a.resourceMax(c.ID, "mana", d.Resources.MaxMana),
		MaxStamina: a.resourceMax(c.ID, "stamina", d.Resources.MaxStamina),
		Stats: Stats{
			Attack:         d.Combat.PhysicalDamage,
			Defense:        d.Combat.PhysicalDefense,
			MagicalAttack:  d.Combat.MagicalDamage,
			MagicalDefense: d.Combat.MagicalDefense,
			Speed:          d.EffectiveOf(character.Dexterity),
			CriticalChance: d.Combat.CriticalChance,
			CriticalDamage: d.Combat.CriticalDamage,
			DodgeChance:    d.Combat.DodgeChance,
			BlockChance:    d.Combat.BlockChance,
			Accuracy:       DefaultAccuracy,
			WeaponMin:      minDmg,
			WeaponMax:      maxDmg,
		},
	}
	if p.Name == "" {
		p.Name = c.ID
	}
	p.HP, p.Mana, p.Stamina = p.MaxHP, p.MaxMana, p.MaxStamina
	return p
}

// resourceMax converts a wide maximum to an int, saturating at MaxInt32.
func (a *StatsAdapter) resourceMax(id, resourceName string, v wide.Int) int {
	n, clamped := v.Saturate(1, math.MaxInt32)
	if clamped {
		a.logger.Debug("resource maximum saturated",
			zap.String("participant", id),
			zap.String("resource", resourceName),
			zap.String("value", v.String()),
		)
	}
	return int(n)
}

// characterWeaponRange derives the placeholder weapon range from level and
// the class weapon factor.
func characterWeaponRange(level int, factor float64) (lo, hi int) {
	l := float64(max(level, 1))
	lo = max(1, int(math.Round(l*factor)))
	hi = max(lo, int(math.Round((2*l+5)*factor)))
	return lo, hi
}

// FromTemplate builds a participant from a static opponent template.
func FromTemplate(t *opponent.Template, team Team) *Participant {
	lo, hi := t.WeaponRange()
	return &Participant{
		ID:           t.ID,
		Name:         t.Name,
		Team:         team,
		Status:       StatusActive,
		Level:        max(t.Level, 1),
		HP:           t.MaxHP,
		MaxHP:        t.MaxHP,
		Mana:         t.MaxMana,
		MaxMana:      t.MaxMana,
		Stamina:      t.MaxStamina,
		MaxStamina:   t.MaxStamina,
		Template:     true,
		Passive:      t.Behavior == opponent.BehaviorPassive,
		AIHook:       t.AIHook,
		Invulnerable: t.Invulnerable,
		Stats: Stats{
			Attack:         t.Stats.Attack,
			Defense:        t.Stats.Defense,
			MagicalAttack:  t.Stats.MagicalAttack,
			MagicalDefense: t.Stats.MagicalDefense,
			Speed:          t.Stats.Speed,
			CriticalChance: t.Stats.CriticalChance,
			CriticalDamage: t.Stats.CriticalDamage,
			DodgeChance:    t.Stats.DodgeChance,
			BlockChance:    t.Stats.BlockChance,
			Accuracy:       t.Stats.Accuracy,
			WeaponMin:      lo,
			WeaponMax:      hi,
		},
	}
}

// FallbackParticipant returns the minimal-stat participant used when a lookup
// fails. Combat fairness is reduced for such a participant, so it is flagged
// Degraded for callers and logs.
func FallbackParticipant(id string, team Team) *Participant {
	return &Participant{
		ID:         id,
		Name:       id,
		Team:       team,
		Status:     StatusActive,
		Level:      1,
		HP:         100,
		MaxHP:      100,
		Mana:       100,
		MaxMana:    100,
		Stamina:    100,
		MaxStamina: 100,
		Degraded:   true,
		Stats: Stats{
			Attack:         10,
			Defense:        5,
			MagicalAttack:  10,
			MagicalDefense: 5,
			Speed:          10,
			CriticalChance: 5,
			CriticalDamage: 150,
			DodgeChance:    5,
			BlockChance:    0,
			Accuracy:       DefaultAccuracy,
			WeaponMin:      1,
			WeaponMax:      5,
		},
	}
}

func (a *StatsAdapter) fallback(id string, team Team, reason string, err error) *Participant {
	a.logger.Warn("using fallback combat stats",
		zap.String("participant", id),
		zap.String("reason", reason),
		zap.Error(err),
	)
	return FallbackParticipant(id, team)
}

func saturate(v int64) int {
	return int(min(max(v, math.MinInt32), math.MaxInt32))
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
