package combat_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ascend/internal/game/ai"
	"github.com/cory-johannsen/ascend/internal/game/combat"
	"github.com/cory-johannsen/ascend/internal/game/dice"
)

// fixedSource rolls the minimum on every die and 0.5 on every float draw, so
// variance multipliers are exactly 1 and chances below 50% never hit.
type fixedSource struct {
	f float64
}

func (s fixedSource) Intn(n int) int { return 0 }

func (s fixedSource) Float64() float64 { return s.f }

func neutralRoller() *dice.Roller {
	return dice.NewLoggedRoller(fixedSource{f: 0.5}, zap.NewNop())
}

// stubBuilder returns copies of preconfigured participants.
type stubBuilder map[string]combat.Participant

func (b stubBuilder) Participant(_ context.Context, id string, team combat.Team) *combat.Participant {
	p, ok := b[id]
	if !ok {
		return combat.FallbackParticipant(id, team)
	}
	p.Team = team
	p.Buffs = nil
	return &p
}

// decideFunc adapts a function to combat.Decider.
type decideFunc func(ws *ai.WorldState, profile ai.Profile) ai.Decision

func (f decideFunc) Decide(ws *ai.WorldState, profile ai.Profile) ai.Decision { return f(ws, profile) }

func always(action ai.Action) decideFunc {
	return func(ws *ai.WorldState, _ ai.Profile) ai.Decision {
		d := ai.Decision{Action: action}
		if action == ai.ActionAttack || action == ai.ActionSkill {
			if t := ai.SelectTarget(ws, ws.Actor.ID, ai.StrategyAggressive, nil); t != nil {
				d.TargetID = t.ID
			}
		}
		return d
	}
}

func fighter(id string) combat.Participant {
	return combat.Participant{
		ID: id, Name: id, Status: combat.StatusActive, Level: 1,
		HP: 100, MaxHP: 100, Mana: 50, MaxMana: 50, Stamina: 50, MaxStamina: 50,
		Stats: combat.Stats{
			Attack: 19, MagicalAttack: 20, CriticalDamage: 150,
			WeaponMin: 1, WeaponMax: 1, Accuracy: 95,
		},
	}
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type engineFixture struct {
	engine    *combat.Engine
	clock     *fakeClock
	mu        sync.Mutex
	summaries []combat.Summary
}

func (f *engineFixture) ended() []combat.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]combat.Summary(nil), f.summaries...)
}

func newFixture(t *testing.T, cfg combat.Config, builder combat.ParticipantBuilder, decider combat.Decider) *engineFixture {
	t.Helper()
	f := &engineFixture{clock: newFakeClock()}
	seq := 0
	f.engine = combat.NewEngine(cfg, builder, decider, neutralRoller(), zap.NewNop(),
		combat.WithClock(f.clock.Now),
		combat.WithIDGenerator(func() string { seq++; return fmt.Sprintf("session-%d", seq) }),
		combat.WithEndHandler(func(s combat.Summary) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.summaries = append(f.summaries, s)
		}),
	)
	t.Cleanup(f.engine.Close)
	return f
}
