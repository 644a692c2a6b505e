package combat_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/ascend/internal/game/character"
	"github.com/cory-johannsen/ascend/internal/game/combat"
	"github.com/cory-johannsen/ascend/internal/game/opponent"
	"github.com/cory-johannsen/ascend/internal/game/progression"
	"github.com/cory-johannsen/ascend/internal/game/resource"
)

type memCharacters struct {
	chars map[string]*character.Attributes
	err   error
}

func (m *memCharacters) GetCharacterStats(_ context.Context, id string) (*character.Attributes, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.chars[id]
	if !ok {
		return nil, fmt.Errorf("character %q: not found", id)
	}
	return c, nil
}

type memPools struct {
	pools map[string]*resource.Pool
	err   error
}

func (m *memPools) GetResourcePool(_ context.Context, id string) (*resource.Pool, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.pools[id]
	if !ok {
		return nil, fmt.Errorf("pool %q: %w", id, resource.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func warrior(id string, level int) *character.Attributes {
	return &character.Attributes{
		ID: id, Name: "Sir " + id, Level: level,
		Class: character.ClassWarrior, Race: character.RaceHuman,
		Base: character.Stats{10, 10, 10, 10, 10, 10},
	}
}

func newAdapter(chars *memCharacters, pools *memPools) (*combat.StatsAdapter, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return combat.NewStatsAdapter(chars, pools, opponent.NewRegistry(), zap.New(core)), logs
}

func TestStatsAdapter_Character(t *testing.T) {
	c := warrior("p1", 10)
	a, logs := newAdapter(&memCharacters{chars: map[string]*character.Attributes{"p1": c}}, &memPools{})
	p := a.Participant(context.Background(), "p1", combat.TeamPlayer)

	d := progression.CalculateDerivedStats(c)
	maxHP, _ := d.Resources.MaxHP.Int64()
	assert.Equal(t, "Sir p1", p.Name)
	assert.Equal(t, combat.StatusActive, p.Status)
	assert.Equal(t, 10, p.Level)
	assert.Equal(t, int(maxHP), p.MaxHP)
	assert.Equal(t, p.MaxHP, p.HP, "missing pool means full resources")
	assert.Equal(t, p.MaxStamina, p.Stamina)
	assert.Equal(t, d.Combat.PhysicalDamage, p.Stats.Attack)
	assert.Equal(t, d.Combat.PhysicalDefense, p.Stats.Defense)
	assert.Equal(t, d.Combat.MagicalDamage, p.Stats.MagicalAttack)
	assert.Equal(t, d.EffectiveOf(character.Dexterity), p.Stats.Speed)
	assert.Equal(t, float64(combat.DefaultAccuracy), p.Stats.Accuracy)
	assert.Equal(t, 12, p.Stats.WeaponMin)
	assert.Equal(t, 30, p.Stats.WeaponMax)
	assert.False(t, p.Degraded)
	assert.Zero(t, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestStatsAdapter_CasterWeaponRange(t *testing.T) {
	c := warrior("m1", 1)
	c.Class = character.ClassMage
	a, _ := newAdapter(&memCharacters{chars: map[string]*character.Attributes{"m1": c}}, &memPools{})
	p := a.Participant(context.Background(), "m1", combat.TeamPlayer)
	assert.Equal(t, 1, p.Stats.WeaponMin)
	assert.Equal(t, 6, p.Stats.WeaponMax)
}

func TestStatsAdapter_PoolClampedIntoMaxima(t *testing.T) {
	chars := &memCharacters{chars: map[string]*character.Attributes{"p1": warrior("p1", 1)}}
	pools := &memPools{pools: map[string]*resource.Pool{
		"p1": {ParticipantID: "p1", HP: 40, Mana: -5, Stamina: math.MaxInt64},
	}}
	a, _ := newAdapter(chars, pools)
	p := a.Participant(context.Background(), "p1", combat.TeamPlayer)
	assert.Equal(t, 40, p.HP)
	assert.Equal(t, 0, p.Mana)
	assert.Equal(t, p.MaxStamina, p.Stamina)
}

func TestStatsAdapter_ZeroHPPoolIsDefeated(t *testing.T) {
	chars := &memCharacters{chars: map[string]*character.Attributes{"p1": warrior("p1", 1)}}
	pools := &memPools{pools: map[string]*resource.Pool{"p1": {HP: 0, Stamina: 10}}}
	a, _ := newAdapter(chars, pools)
	assert.Equal(t, combat.StatusDefeated, a.Participant(context.Background(), "p1", combat.TeamPlayer).Status)
}

func TestStatsAdapter_SaturatesHugeMaxima(t *testing.T) {
	c := warrior("p1", 1)
	c.PrestigeLevel = 1_000_000
	a, logs := newAdapter(&memCharacters{chars: map[string]*character.Attributes{"p1": c}}, &memPools{})
	p := a.Participant(context.Background(), "p1", combat.TeamPlayer)
	assert.Equal(t, math.MaxInt32, p.MaxHP)
	assert.Equal(t, math.MaxInt32, p.HP)
	assert.NotZero(t, logs.FilterMessage("resource maximum saturated").Len())
}

func TestStatsAdapter_Template(t *testing.T) {
	a, _ := newAdapter(&memCharacters{}, &memPools{})
	p := a.Participant(context.Background(), opponent.TrainingDummyID, combat.TeamEnemy)
	assert.Equal(t, "Combat Training Dummy", p.Name)
	assert.Equal(t, combat.TeamEnemy, p.Team)
	assert.Equal(t, 1.0, p.Stats.Attack)
	assert.Equal(t, 100.0, p.Stats.Defense)
	assert.True(t, p.Template)
	assert.True(t, p.Passive)
	assert.Equal(t, 1, p.Stats.WeaponMin)
	assert.Equal(t, 1, p.Stats.WeaponMax)
	assert.Equal(t, p.MaxHP, p.HP)
}

func TestStatsAdapter_FallbackIsDegraded(t *testing.T) {
	cases := map[string]struct {
		id    string
		chars *memCharacters
		pools *memPools
	}{
		"character lookup fails": {"p1", &memCharacters{err: errors.New("db down")}, &memPools{}},
		"character invalid":      {"p1", &memCharacters{chars: map[string]*character.Attributes{"p1": {ID: "p1"}}}, &memPools{}},
		"pool lookup fails":      {"p1", &memCharacters{chars: map[string]*character.Attributes{"p1": warrior("p1", 1)}}, &memPools{err: errors.New("timeout")}},
		"template missing":       {"test_nobody", &memCharacters{}, &memPools{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			a, logs := newAdapter(tc.chars, tc.pools)
			p := a.Participant(context.Background(), tc.id, combat.TeamEnemy)

			want := combat.FallbackParticipant(tc.id, combat.TeamEnemy)
			assert.Equal(t, want, p)
			assert.True(t, p.Degraded)
			assert.Equal(t, 1, logs.FilterMessage("using fallback combat stats").FilterLevelExact(zap.WarnLevel).Len())
		})
	}
}

func TestFallbackParticipant_DocumentedStats(t *testing.T) {
	p := combat.FallbackParticipant("x", combat.TeamPlayer)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 100, p.HP)
	assert.Equal(t, 100, p.Mana)
	assert.Equal(t, 100, p.Stamina)
	assert.Equal(t, combat.Stats{
		Attack: 10, Defense: 5, MagicalAttack: 10, MagicalDefense: 5, Speed: 10,
		CriticalChance: 5, CriticalDamage: 150, DodgeChance: 5, BlockChance: 0,
		Accuracy: 95, WeaponMin: 1, WeaponMax: 5,
	}, p.Stats)
}
