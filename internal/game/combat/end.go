package combat

import "go.uber.org/zap"

// experiencePerLevel scales the placeholder experience reward.
const experiencePerLevel = 10

// checkCombatEnd ends s when a player has fled, when no player is active, or
// when fewer than two sides remain active.
//
// Postcondition: Returns the Summary when s ended, nil otherwise.
func (e *Engine) checkCombatEnd(s *Session) *Summary {
	fled := false
	activePlayers := 0
	sides := make(map[string]*Participant)
	for _, p := range s.Participants {
		if p.Team == TeamPlayer && p.Status == StatusFled {
			fled = true
		}
		if p.IsActive() {
			sides[s.side(p)] = p
			if p.Team == TeamPlayer {
				activePlayers++
			}
		}
	}

	switch {
	case fled:
		s.Winner = ""
		return e.end(s, OutcomeFlee)
	case len(sides) == 0:
		return e.end(s, OutcomeDraw)
	case activePlayers == 0:
		for _, p := range sides {
			s.Winner = string(p.Team)
		}
		return e.end(s, OutcomeDefeat)
	case len(sides) < 2:
		for _, p := range sides {
			s.Winner = string(p.Team)
			if s.BattleType == BattlePvP {
				s.Winner = p.ID
			}
		}
		return e.end(s, OutcomeVictory)
	}
	return nil
}

// end moves s to SessionEnded, clears every buff, removes s from the registry
// and the reverse index, and reports the Summary. The caller must hold s.mu.
//
// Precondition: s.Status == SessionActive.
func (e *Engine) end(s *Session, outcome Outcome) *Summary {
	s.Status = SessionEnded
	s.EndedAt = e.now()
	if s.timer != nil {
		s.timer.Stop()
	}
	for _, p := range s.Participants {
		p.Buffs = nil
	}

	e.mu.Lock()
	delete(e.sessions, s.ID)
	for _, p := range s.Participants {
		if e.index[p.ID] == s.ID {
			delete(e.index, p.ID)
		}
	}
	e.mu.Unlock()

	rounds := s.Round
	if outcome == OutcomeTimeout {
		// A timeout fires between calls, before the current round resolved.
		rounds--
	}
	summary := &Summary{
		SessionID: s.ID,
		Outcome:   outcome,
		Winner:    s.Winner,
		Duration:  s.EndedAt.Sub(s.StartedAt),
		Rounds:    rounds,
		Rewards:   rewards(s, outcome),
	}
	for _, p := range s.Participants {
		summary.Participants = append(summary.Participants, p.clone())
	}

	e.logger.Info("combat ended",
		zap.String("session", s.ID),
		zap.String("outcome", string(outcome)),
		zap.String("winner", s.Winner),
		zap.Int("rounds", rounds),
		zap.Duration("duration", summary.Duration),
	)
	if e.onEnd != nil {
		e.onEnd(*summary)
	}
	return summary
}

// rewards builds the placeholder reward list: experience for every defeated
// opponent of the winning side, on victory only.
func rewards(s *Session, outcome Outcome) []Reward {
	if outcome != OutcomeVictory {
		return nil
	}
	var out []Reward
	for _, p := range s.Participants {
		if p.Status != StatusDefeated {
			continue
		}
		if s.BattleType == BattlePvE && p.Team == TeamPlayer {
			continue
		}
		out = append(out, Reward{Kind: "experience", Amount: p.Level * experiencePerLevel, Source: p.ID})
	}
	return out
}
