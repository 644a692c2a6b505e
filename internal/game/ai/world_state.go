package ai

import "time"

// Team mirrors the combat team of a participant.
type Team string

const (
	TeamPlayer  Team = "player"
	TeamEnemy   Team = "enemy"
	TeamNeutral Team = "neutral"
)

// CombatantState captures a participant's combat-relevant state at decision time.
type CombatantState struct {
	ID         string
	Name       string
	Team       Team
	HP         int
	MaxHP      int
	Mana       int
	MaxMana    int
	Stamina    int
	MaxStamina int
	Active     bool
}

// HPPercent returns current HP as a percentage of MaxHP; 0 if MaxHP == 0.
func (c *CombatantState) HPPercent() float64 {
	return percent(c.HP, c.MaxHP)
}

// StaminaPercent returns current stamina as a percentage of MaxStamina; 0 if MaxStamina == 0.
func (c *CombatantState) StaminaPercent() float64 {
	return percent(c.Stamina, c.MaxStamina)
}

func percent(cur, maxV int) float64 {
	if maxV <= 0 {
		return 0
	}
	return float64(cur) / float64(maxV) * 100
}

// LogEntry is one resolved action from the session log.
type LogEntry struct {
	ActorID string
	Action  Action
	At      time.Time
}

// WorldState is the snapshot passed to the Policy for one acting participant.
//
// Invariant: Actor must not be nil and must also appear in Combatants.
type WorldState struct {
	Actor      *CombatantState
	Combatants []*CombatantState
	History    []LogEntry
	Now        time.Time
}

// EnemiesOf returns all active combatants on a different team from uid.
//
// Postcondition: returned slice contains no inactive combatants and no teammates of uid.
func (ws *WorldState) EnemiesOf(uid string) []*CombatantState {
	self := ws.find(uid)
	var out []*CombatantState
	for _, c := range ws.Combatants {
		if c.Active && c.ID != uid && (self == nil || c.Team != self.Team) {
			out = append(out, c)
		}
	}
	return out
}

// HasLivingEnemies returns true when at least one active enemy exists.
//
// Postcondition: equivalent to len(EnemiesOf(uid)) > 0.
func (ws *WorldState) HasLivingEnemies(uid string) bool {
	return len(ws.EnemiesOf(uid)) > 0
}

// RecentActions counts actions of kind taken by uid within window before Now.
func (ws *WorldState) RecentActions(uid string, kind Action, window time.Duration) int {
	n := 0
	for _, e := range ws.History {
		if e.ActorID == uid && e.Action == kind && ws.Now.Sub(e.At) <= window {
			n++
		}
	}
	return n
}

func (ws *WorldState) find(uid string) *CombatantState {
	for _, c := range ws.Combatants {
		if c.ID == uid {
			return c
		}
	}
	return nil
}
