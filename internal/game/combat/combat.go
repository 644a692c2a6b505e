// Package combat implements the authoritative turn-resolving combat engine.
//
// An Engine owns every active Session and the reverse index that maps a
// character to the one session it may be in. A Session is driven by the
// player: each ProcessAction call resolves the player's action and then one
// AI action for every active non-player participant.
package combat

// Team is the side a participant fights for.
type Team string

const (
	TeamPlayer  Team = "player"
	TeamEnemy   Team = "enemy"
	TeamNeutral Team = "neutral"
)

// Status is a participant's lifecycle state. A participant leaves StatusActive
// exactly once.
type Status string

const (
	StatusActive   Status = "active"
	StatusDefeated Status = "defeated"
	StatusFled     Status = "fled"
)

// SessionStatus is the lifecycle state of a Session. StatusEnded is terminal.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

// BattleType selects how targets are assigned to teams.
type BattleType string

const (
	BattlePvE BattleType = "pve"
	BattlePvP BattleType = "pvp"
)

// Outcome is how a session ended.
type Outcome string

const (
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
	OutcomeFlee    Outcome = "flee"
	OutcomeDraw    Outcome = "draw"
	OutcomeTimeout Outcome = "timeout"
)
