package combat

import "time"

// CombatResult describes the resolution of one action.
type CombatResult struct {
	ActorID  string
	TargetID string
	Action   ActionType
	Damage   int
	Healing  int
	Critical bool
	Dodged   bool
	Blocked  bool
	// ManaDelta and StaminaDelta are the actor's resource changes.
	ManaDelta    int
	StaminaDelta int
	Message      string
	// Status is the session status after this action.
	Status SessionStatus
}

// Reward is a placeholder reward entry produced on victory.
type Reward struct {
	Kind   string
	Amount int
	Source string
}

// Summary is the terminal record of an ended session.
type Summary struct {
	SessionID    string
	Outcome      Outcome
	Winner       string
	Duration     time.Duration
	Rounds       int
	Rewards      []Reward
	Participants []Participant
}

// TurnOutcome aggregates everything resolved by one ProcessAction call.
type TurnOutcome struct {
	SessionID string
	Round     int
	Results   []CombatResult
	Status    SessionStatus
	// Summary is set when the session ended during this call.
	Summary *Summary
}

// Messages returns the human-readable message of every result in order.
func (o *TurnOutcome) Messages() []string {
	msgs := make([]string, len(o.Results))
	for i, r := range o.Results {
		msgs[i] = r.Message
	}
	return msgs
}
