package combat

import (
	"sync"
	"time"
)

// LogEntry is one line of a session's append-only combat log.
type LogEntry struct {
	Round    int
	ActorID  string
	Action   ActionType
	TargetID string
	Message  string
	At       time.Time
}

// Session is the live state of one battle.
//
// Participants is kept in turn order: every player-team participant first,
// then all others, each group in creation order. The order never changes.
// All fields are guarded by mu once the session is registered.
type Session struct {
	mu sync.Mutex

	ID           string
	BattleType   BattleType
	Participants []*Participant
	// CurrentTurn indexes Participants while a round is resolving.
	CurrentTurn int
	// Round starts at 1 and increments after every resolved cycle.
	Round     int
	Status    SessionStatus
	Winner    string
	StartedAt time.Time
	EndedAt   time.Time
	Log       []LogEntry

	timer *TurnTimer
	// lastActivity is when the session started or last completed a round.
	lastActivity time.Time
}

// participant returns the participant with id, or nil.
func (s *Session) participant(id string) *Participant {
	for _, p := range s.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// TurnOrder returns participant ids in turn order.
func (s *Session) TurnOrder() []string {
	ids := make([]string, len(s.Participants))
	for i, p := range s.Participants {
		ids[i] = p.ID
	}
	return ids
}

// side returns the key used by end detection. In PvP every player fights for
// itself; otherwise the team is the side.
func (s *Session) side(p *Participant) string {
	if s.BattleType == BattlePvP && p.Team == TeamPlayer {
		return "player:" + p.ID
	}
	return string(p.Team)
}

// opponentsOf returns the active participants on a different side from p.
func (s *Session) opponentsOf(p *Participant) []*Participant {
	var out []*Participant
	mine := s.side(p)
	for _, o := range s.Participants {
		if o.ID != p.ID && o.IsActive() && s.side(o) != mine {
			out = append(out, o)
		}
	}
	return out
}

func (s *Session) appendLog(actorID string, action ActionType, targetID, msg string, at time.Time) {
	s.Log = append(s.Log, LogEntry{
		Round:    s.Round,
		ActorID:  actorID,
		Action:   action,
		TargetID: targetID,
		Message:  msg,
		At:       at,
	})
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	ID           string
	BattleType   BattleType
	Status       SessionStatus
	Round        int
	Winner       string
	TurnOrder    []string
	Participants []Participant
	Log          []LogEntry
	StartedAt    time.Time
}

// Participant returns the participant with id from the snapshot.
func (s *Snapshot) Participant(id string) (Participant, bool) {
	for _, p := range s.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// snapshot copies s. The caller must hold s.mu.
func (s *Session) snapshot() *Snapshot {
	snap := &Snapshot{
		ID:         s.ID,
		BattleType: s.BattleType,
		Status:     s.Status,
		Round:      s.Round,
		Winner:     s.Winner,
		TurnOrder:  s.TurnOrder(),
		Log:        append([]LogEntry(nil), s.Log...),
		StartedAt:  s.StartedAt,
	}
	for _, p := range s.Participants {
		snap.Participants = append(snap.Participants, p.clone())
	}
	return snap
}
