package combat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/ascend/internal/game/ai"
	"github.com/cory-johannsen/ascend/internal/game/combat"
)

func duel(t *testing.T, decider combat.Decider, mutate func(b stubBuilder)) (*engineFixture, *combat.Snapshot) {
	t.Helper()
	b := stubBuilder{"p1": fighter("p1"), "e1": fighter("e1")}
	if mutate != nil {
		mutate(b)
	}
	f := newFixture(t, combat.Config{}, b, decider)
	snap, err := f.engine.StartCombat(context.Background(), "p1", combat.Request{TargetIDs: []string{"e1"}})
	require.NoError(t, err)
	return f, snap
}

func participant(t *testing.T, f *engineFixture, sessionID, id string) combat.Participant {
	t.Helper()
	snap, ok := f.engine.Session(sessionID)
	require.True(t, ok, "session %s should be active", sessionID)
	p, ok := snap.Participant(id)
	require.True(t, ok)
	return p
}

func TestStartCombat_BuildsTurnOrder(t *testing.T) {
	b := stubBuilder{"p1": fighter("p1"), "e1": fighter("e1"), "e2": fighter("e2")}
	f := newFixture(t, combat.Config{}, b, always(ai.ActionPass))
	snap, err := f.engine.StartCombat(context.Background(), "p1", combat.Request{TargetIDs: []string{"e1", "e2"}})
	require.NoError(t, err)

	assert.Equal(t, "session-1", snap.ID)
	assert.Equal(t, combat.BattlePvE, snap.BattleType)
	assert.Equal(t, combat.SessionActive, snap.Status)
	assert.Equal(t, 1, snap.Round)
	assert.Equal(t, []string{"p1", "e1", "e2"}, snap.TurnOrder)
	p1, _ := snap.Participant("p1")
	e1, _ := snap.Participant("e1")
	assert.Equal(t, combat.TeamPlayer, p1.Team)
	assert.Equal(t, combat.TeamEnemy, e1.Team)
	assert.True(t, f.engine.InCombat("p1"))
	assert.True(t, f.engine.InCombat("e1"))
	assert.Equal(t, combat.RegistryStats{Sessions: 1, Participants: 3}, f.engine.Stats())
}

func TestStartCombat_AlreadyInCombat(t *testing.T) {
	f, _ := duel(t, always(ai.ActionPass), func(b stubBuilder) { b["e2"] = fighter("e2") })
	_, err := f.engine.StartCombat(context.Background(), "p1", combat.Request{TargetIDs: []string{"e2"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, combat.ErrAlreadyInCombat))
	assert.Contains(t, err.Error(), "Character is already in combat")
	assert.Equal(t, 1, f.engine.Stats().Sessions)
}

func TestStartCombat_TargetBusy(t *testing.T) {
	f, _ := duel(t, always(ai.ActionPass), func(b stubBuilder) { b["p2"] = fighter("p2") })
	_, err := f.engine.StartCombat(context.Background(), "p2", combat.Request{TargetIDs: []string{"e1"}})
	assert.Equal(t, combat.CodeInvalidAction, combat.CodeOf(err))
	assert.False(t, f.engine.InCombat("p2"))
}

func TestStartCombat_RejectsMalformedRequests(t *testing.T) {
	f := newFixture(t, combat.Config{}, stubBuilder{}, always(ai.ActionPass))
	cases := map[string]struct {
		initiator string
		req       combat.Request
	}{
		"no targets":      {"p1", combat.Request{}},
		"self target":     {"p1", combat.Request{TargetIDs: []string{"p1"}}},
		"duplicate":       {"p1", combat.Request{TargetIDs: []string{"e1", "e1"}}},
		"empty target":    {"p1", combat.Request{TargetIDs: []string{""}}},
		"empty initiator": {"", combat.Request{TargetIDs: []string{"e1"}}},
		"template":        {"test_dummy_001", combat.Request{TargetIDs: []string{"e1"}}},
		"battle type":     {"p1", combat.Request{TargetIDs: []string{"e1"}, BattleType: "raid"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.engine.StartCombat(context.Background(), tc.initiator, tc.req)
			assert.Equal(t, combat.CodeInvalidAction, combat.CodeOf(err))
		})
	}
	assert.Zero(t, f.engine.Stats().Sessions)
}

func TestStartCombat_DefeatedInitiatorRejected(t *testing.T) {
	b := stubBuilder{"p1": fighter("p1"), "e1": fighter("e1")}
	p1 := b["p1"]
	p1.HP = 0
	p1.Status = combat.StatusDefeated
	b["p1"] = p1
	f := newFixture(t, combat.Config{}, b, always(ai.ActionPass))
	_, err := f.engine.StartCombat(context.Background(), "p1", combat.Request{TargetIDs: []string{"e1"}})
	assert.Equal(t, combat.CodeInvalidAction, combat.CodeOf(err))
	assert.False(t, f.engine.InCombat("p1"))
}

func TestProcessAction_Attack(t *testing.T) {
	f, snap := duel(t, always(ai.ActionPass), nil)
	out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionAttack, TargetID: "e1"})
	require.NoError(t, err)

	require.Len(t, out.Results, 2)
	r := out.Results[0]
	assert.Equal(t, 20, r.Damage)
	assert.Equal(t, -combat.AttackStaminaCost, r.StaminaDelta)
	assert.Equal(t, combat.ActionPass, out.Results[1].Action)
	assert.Equal(t, combat.SessionActive, out.Status)
	assert.Nil(t, out.Summary)
	assert.Len(t, out.Messages(), 2)

	assert.Equal(t, 80, participant(t, f, snap.ID, "e1").HP)
	assert.Equal(t, 45, participant(t, f, snap.ID, "p1").Stamina)
	next, _ := f.engine.Session(snap.ID)
	assert.Equal(t, 2, next.Round)
	assert.Len(t, next.Log, 2)
}

func TestProcessAction_AttackDefaultsToFirstOpponent(t *testing.T) {
	f, snap := duel(t, always(ai.ActionPass), nil)
	out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionAttack})
	require.NoError(t, err)
	assert.Equal(t, "e1", out.Results[0].TargetID)
}

func TestProcessAction_DamageModifiers(t *testing.T) {
	cases := []struct {
		name   string
		enemy  func(p *combat.Participant)
		damage int
		check  func(t *testing.T, r combat.CombatResult)
	}{
		{"mitigation", func(p *combat.Participant) { p.Stats.Defense = 10 }, 10, nil},
		{"no modifiers", nil, 20, nil},
		{"block", func(p *combat.Participant) { p.Stats.BlockChance = 60 }, 10, func(t *testing.T, r combat.CombatResult) { assert.True(t, r.Blocked) }},
		{"dodge", func(p *combat.Participant) { p.Stats.DodgeChance = 60 }, 0, func(t *testing.T, r combat.CombatResult) { assert.True(t, r.Dodged) }},
		{"minimum damage", func(p *combat.Participant) { p.Stats.Defense = 1_000_000 }, 1, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, snap := duel(t, always(ai.ActionPass), func(b stubBuilder) {
				e := b["e1"]
				if tc.enemy != nil {
					tc.enemy(&e)
				}
				b["e1"] = e
			})
			out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionAttack, TargetID: "e1"})
			require.NoError(t, err)
			r := out.Results[0]
			assert.Equal(t, tc.damage, r.Damage)
			assert.Equal(t, 100-tc.damage, participant(t, f, snap.ID, "e1").HP)
			assert.Equal(t, -combat.AttackStaminaCost, r.StaminaDelta, "stamina is spent even on a dodge")
			if tc.check != nil {
				tc.check(t, r)
			}
		})
	}
}

func TestProcessAction_CriticalHit(t *testing.T) {
	f, snap := duel(t, always(ai.ActionPass), func(b stubBuilder) {
		p := b["p1"]
		p.Stats.CriticalChance = 60
		b["p1"] = p
	})
	out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionAttack, TargetID: "e1"})
	require.NoError(t, err)
	assert.True(t, out.Results[0].Critical)
	assert.Equal(t, 30, out.Results[0].Damage)
}

func TestProcessAction_UseSkill(t *testing.T) {
	f, snap := duel(t, always(ai.ActionPass), func(b stubBuilder) {
		e := b["e1"]
		e.Stats.DodgeChance = 100
		e.Stats.BlockChance = 100
		b["e1"] = e
	})
	out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionUseSkill, TargetID: "e1"})
	require.NoError(t, err)
	r := out.Results[0]
	assert.Equal(t, 30, r.Damage, "skills ignore dodge and block")
	assert.False(t, r.Dodged)
	assert.False(t, r.Blocked)
	assert.Equal(t, -combat.SkillManaCost, r.ManaDelta)
	assert.Equal(t, 40, participant(t, f, snap.ID, "p1").Mana)
}

func TestProcessAction_InsufficientStaminaDoesNotMutate(t *testing.T) {
	f, snap := duel(t, always(ai.ActionAttack), func(b stubBuilder) {
		p := b["p1"]
		p.Stamina = 3
		b["p1"] = p
	})
	before, _ := f.engine.Session(snap.ID)

	_, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionAttack, TargetID: "e1"})
	require.Error(t, err)
	assert.Equal(t, combat.CodeInsufficientResources, combat.CodeOf(err))

	after, ok := f.engine.Session(snap.ID)
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestProcessAction_InsufficientMana(t *testing.T) {
	f, snap := duel(t, always(ai.ActionPass), func(b stubBuilder) {
		p := b["p1"]
		p.Mana = 9
		b["p1"] = p
	})
	_, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionUseSkill})
	assert.Equal(t, combat.CodeInsufficientResources, combat.CodeOf(err))
}

func TestProcessAction_DefendNeverDuplicatesBuff(t *testing.T) {
	f, snap := duel(t, always(ai.ActionAttack), func(b stubBuilder) {
		p := b["p1"]
		p.HP, p.MaxHP = 10_000, 10_000
		b["p1"] = p
	})
	for i := 0; i < 10; i++ {
		out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionDefend})
		require.NoError(t, err)
		assert.Equal(t, 10, out.Results[1].Damage, "defending halves incoming damage")

		p1 := participant(t, f, snap.ID, "p1")
		count := 0
		for _, b := range p1.Buffs {
			if b.ID == combat.DefendingBuffID {
				count++
			}
		}
		assert.Equal(t, 1, count, "round %d", i+1)
	}
}

func TestProcessAction_DefendExpiresOnNextTurn(t *testing.T) {
	f, snap := duel(t, always(ai.ActionAttack), nil)
	_, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionDefend})
	require.NoError(t, err)
	out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionPass})
	require.NoError(t, err)
	assert.Equal(t, 20, out.Results[1].Damage)
	assert.Empty(t, participant(t, f, snap.ID, "p1").Buffs)
}

func TestProcessAction_DefendRestoresStamina(t *testing.T) {
	f, snap := duel(t, always(ai.ActionPass), func(b stubBuilder) {
		p := b["p1"]
		p.Stamina = 49
		b["p1"] = p
	})
	out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionDefend})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Results[0].StaminaDelta, "bounded by max stamina")
	assert.Equal(t, 50, participant(t, f, snap.ID, "p1").Stamina)
}

func TestProcessAction_UseItemHealsBounded(t *testing.T) {
	f, snap := duel(t, always(ai.ActionPass), func(b stubBuilder) {
		p := b["p1"]
		p.HP = 90
		b["p1"] = p
	})
	out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionUseItem, ItemID: "potion"})
	require.NoError(t, err)
	assert.Equal(t, 10, out.Results[0].Healing)
	assert.Equal(t, 100, participant(t, f, snap.ID, "p1").HP)
}

func TestProcessAction_Victory(t *testing.T) {
	f, snap := duel(t, always(ai.ActionAttack), func(b stubBuilder) {
		e := b["e1"]
		e.HP = 15
		e.Level = 4
		b["e1"] = e
	})
	_, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionDefend})
	require.NoError(t, err)

	out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionAttack})
	require.NoError(t, err)
	require.Len(t, out.Results, 1, "defeated enemies do not act")
	assert.Equal(t, combat.SessionEnded, out.Status)
	require.NotNil(t, out.Summary)
	assert.Equal(t, combat.OutcomeVictory, out.Summary.Outcome)
	assert.Equal(t, string(combat.TeamPlayer), out.Summary.Winner)
	assert.Equal(t, 2, out.Summary.Rounds)
	assert.Equal(t, []combat.Reward{{Kind: "experience", Amount: 40, Source: "e1"}}, out.Summary.Rewards)
	for _, p := range out.Summary.Participants {
		assert.Empty(t, p.Buffs, "buffs are cleared on end")
	}

	_, ok := f.engine.Session(snap.ID)
	assert.False(t, ok)
	assert.False(t, f.engine.InCombat("p1"))
	assert.False(t, f.engine.InCombat("e1"))
	require.Len(t, f.ended(), 1)
	assert.Equal(t, combat.OutcomeVictory, f.ended()[0].Outcome)
}

func TestProcessAction_Defeat(t *testing.T) {
	f, snap := duel(t, always(ai.ActionAttack), func(b stubBuilder) {
		p := b["p1"]
		p.HP = 20
		b["p1"] = p
	})
	out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionPass})
	require.NoError(t, err)
	require.NotNil(t, out.Summary)
	assert.Equal(t, combat.OutcomeDefeat, out.Summary.Outcome)
	assert.Equal(t, string(combat.TeamEnemy), out.Summary.Winner)
	assert.Empty(t, out.Summary.Rewards)
}

func TestProcessAction_Flee(t *testing.T) {
	f, snap := duel(t, always(ai.ActionAttack), nil)
	out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionFlee})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	require.NotNil(t, out.Summary)
	assert.Equal(t, combat.OutcomeFlee, out.Summary.Outcome)
	assert.Empty(t, out.Summary.Winner)
	assert.False(t, f.engine.InCombat("p1"))
}

func TestProcessAction_EndedSessionIsGone(t *testing.T) {
	f, snap := duel(t, always(ai.ActionPass), nil)
	_, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionFlee})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionPass})
		assert.Equal(t, combat.CodeInvalidAction, combat.CodeOf(err))
		_, ok := f.engine.Session(snap.ID)
		assert.False(t, ok, "an ended session never becomes active again")
	}

	// The freed participant can start a new session.
	next, err := f.engine.StartCombat(context.Background(), "p1", combat.Request{TargetIDs: []string{"e1"}})
	require.NoError(t, err)
	assert.NotEqual(t, snap.ID, next.ID)
}

func TestProcessAction_InvalidActions(t *testing.T) {
	f, snap := duel(t, always(ai.ActionPass), func(b stubBuilder) { b["e2"] = fighter("e2") })
	cases := map[string]struct {
		session, actor string
		action         combat.Action
	}{
		"unknown session": {"nope", "p1", combat.Action{Type: combat.ActionPass}},
		"unknown actor":   {snap.ID, "ghost", combat.Action{Type: combat.ActionPass}},
		"enemy actor":     {snap.ID, "e1", combat.Action{Type: combat.ActionPass}},
		"unknown type":    {snap.ID, "p1", combat.Action{Type: "DANCE"}},
		"self target":     {snap.ID, "p1", combat.Action{Type: combat.ActionAttack, TargetID: "p1"}},
		"missing target":  {snap.ID, "p1", combat.Action{Type: combat.ActionAttack, TargetID: "e2"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.engine.ProcessAction(tc.session, tc.actor, tc.action)
			assert.Equal(t, combat.CodeInvalidAction, combat.CodeOf(err))
		})
	}
}

func TestProcessAction_AIDowngradesUnaffordableAction(t *testing.T) {
	f, snap := duel(t, always(ai.ActionSkill), func(b stubBuilder) {
		e := b["e1"]
		e.Mana = 0
		b["e1"] = e
	})
	out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionPass})
	require.NoError(t, err)
	assert.Equal(t, combat.ActionDefend, out.Results[1].Action)
	e1 := participant(t, f, snap.ID, "e1")
	_, ok := e1.Buff(combat.DefendingBuffID)
	assert.True(t, ok)
}

func TestProcessAction_AISeesHistory(t *testing.T) {
	var seen []ai.LogEntry
	decider := decideFunc(func(ws *ai.WorldState, _ ai.Profile) ai.Decision {
		seen = ws.History
		return ai.Decision{Action: ai.ActionPass}
	})
	f, snap := duel(t, decider, nil)
	_, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionDefend})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, ai.LogEntry{ActorID: "p1", Action: ai.ActionDefend, At: f.clock.Now()}, seen[0])
}

func TestProcessAction_PvP(t *testing.T) {
	b := stubBuilder{"p1": fighter("p1"), "p2": fighter("p2")}
	f := newFixture(t, combat.Config{}, b, always(ai.ActionAttack))
	snap, err := f.engine.StartCombat(context.Background(), "p1", combat.Request{TargetIDs: []string{"p2"}, BattleType: combat.BattlePvP})
	require.NoError(t, err)
	p2, _ := snap.Participant("p2")
	assert.Equal(t, combat.TeamPlayer, p2.Team)

	out, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionAttack})
	require.NoError(t, err)
	assert.Len(t, out.Results, 1, "no AI turns in a duel")
	assert.Equal(t, "p2", out.Results[0].TargetID)
	assert.Equal(t, combat.SessionActive, out.Status)

	for i := 0; i < 5; i++ {
		out, err = f.engine.ProcessAction(snap.ID, "p2", combat.Action{Type: combat.ActionAttack})
		require.NoError(t, err)
	}
	require.NotNil(t, out.Summary)
	assert.Equal(t, combat.OutcomeVictory, out.Summary.Outcome)
	assert.Equal(t, "p2", out.Summary.Winner)
	assert.Equal(t, []combat.Reward{{Kind: "experience", Amount: 10, Source: "p1"}}, out.Summary.Rewards)
}

func TestProcessAction_RoundCeiling(t *testing.T) {
	b := stubBuilder{"p1": fighter("p1"), "e1": fighter("e1")}
	f := newFixture(t, combat.Config{MaxRounds: 3}, b, always(ai.ActionPass))
	snap, err := f.engine.StartCombat(context.Background(), "p1", combat.Request{TargetIDs: []string{"e1"}})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionPass})
		require.NoError(t, err)
	}
	_, err = f.engine.ProcessAction(snap.ID, "p1", combat.Action{Type: combat.ActionPass})
	assert.Equal(t, combat.CodeCombatTimeout, combat.CodeOf(err))
	require.Len(t, f.ended(), 1)
	assert.Equal(t, combat.OutcomeTimeout, f.ended()[0].Outcome)
	assert.Equal(t, 3, f.ended()[0].Rounds)
	assert.False(t, f.engine.InCombat("p1"))
}
