package combat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/ascend/internal/game/ai"
	"github.com/cory-johannsen/ascend/internal/game/dice"
	"github.com/cory-johannsen/ascend/internal/game/opponent"
)

// DefaultMaxRounds is the round ceiling used when Config.MaxRounds is unset.
const DefaultMaxRounds = 100

// Config tunes an Engine.
type Config struct {
	// MaxRounds is the round ceiling; a session past it ends with COMBAT_TIMEOUT.
	MaxRounds int
	// TurnTimeout force-ends a session idle for this long; 0 disables it.
	TurnTimeout time.Duration
}

// ParticipantBuilder creates participants for a new session.
type ParticipantBuilder interface {
	Participant(ctx context.Context, id string, team Team) *Participant
}

// Decider chooses actions for non-player participants.
type Decider interface {
	Decide(ws *ai.WorldState, profile ai.Profile) ai.Decision
}

// Request describes a combat to start.
type Request struct {
	TargetIDs  []string
	BattleType BattleType
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces the session id generator.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithEndHandler registers fn to receive the Summary of every ended session.
// fn is called while the ended session is still locked and must not block for long.
func WithEndHandler(fn func(Summary)) Option {
	return func(e *Engine) { e.onEnd = fn }
}

// Engine owns every active Session and the participant reverse index.
// All methods are safe for concurrent use.
//
// Lock order: a Session's mu is always acquired before Engine.mu, and
// Engine.mu is never held while waiting for a Session.
type Engine struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	// index maps a character id to the id of its one active session.
	index map[string]string

	cfg     Config
	builder ParticipantBuilder
	policy  Decider
	roller  *dice.Roller
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
	onEnd   func(Summary)
}

// NewEngine creates an Engine with no sessions.
//
// Precondition: builder, policy, roller and logger must be non-nil.
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine(cfg Config, builder ParticipantBuilder, policy Decider, roller *dice.Roller, logger *zap.Logger, opts ...Option) *Engine {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	e := &Engine{
		sessions: make(map[string]*Session),
		index:    make(map[string]string),
		cfg:      cfg,
		builder:  builder,
		policy:   policy,
		roller:   roller,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// indexed reports whether id takes part in the reverse index. Static opponent
// templates are instanced per session and never indexed.
func indexed(id string) bool {
	return !opponent.IsTemplateID(id)
}

// StartCombat creates a session between initiatorID and req.TargetIDs.
//
// Precondition: req.TargetIDs is non-empty, has no duplicates, and does not
// contain initiatorID.
// Postcondition: Returns a snapshot of the new active session, or
// ErrAlreadyInCombat when initiatorID already maps to an active session.
func (e *Engine) StartCombat(ctx context.Context, initiatorID string, req Request) (*Snapshot, error) {
	bt := req.BattleType
	if bt == "" {
		bt = BattlePvE
	}
	if bt != BattlePvE && bt != BattlePvP {
		return nil, invalidAction("unknown battle type %q", req.BattleType)
	}
	if initiatorID == "" {
		return nil, invalidAction("initiator id must not be empty")
	}
	if !indexed(initiatorID) {
		return nil, invalidAction("opponent template %q cannot initiate combat", initiatorID)
	}
	if len(req.TargetIDs) == 0 {
		return nil, invalidAction("at least one target is required")
	}
	seen := map[string]bool{initiatorID: true}
	for _, id := range req.TargetIDs {
		switch {
		case id == "":
			return nil, invalidAction("target id must not be empty")
		case id == initiatorID:
			return nil, invalidAction("cannot start combat against yourself")
		case seen[id]:
			return nil, invalidAction("duplicate target %q", id)
		}
		seen[id] = true
	}

	ids := append([]string{initiatorID}, req.TargetIDs...)
	if err := e.checkAvailable(ids); err != nil {
		return nil, err
	}

	targetTeam := TeamEnemy
	if bt == BattlePvP {
		targetTeam = TeamPlayer
	}
	initiator := e.builder.Participant(ctx, initiatorID, TeamPlayer)
	if !initiator.IsActive() {
		return nil, invalidAction("%s cannot fight at 0 HP", initiator.Name)
	}
	var players, others []*Participant
	players = append(players, initiator)
	for _, id := range req.TargetIDs {
		p := e.builder.Participant(ctx, id, targetTeam)
		if p.Team == TeamPlayer {
			players = append(players, p)
		} else {
			others = append(others, p)
		}
	}

	s := &Session{
		ID:           e.newID(),
		BattleType:   bt,
		Participants: append(players, others...),
		Round:        1,
		Status:       SessionActive,
		StartedAt:    e.now(),
	}
	s.lastActivity = s.StartedAt
	if e.cfg.TurnTimeout > 0 {
		id := s.ID
		s.timer = NewTurnTimer(e.cfg.TurnTimeout, func() { e.expire(id) })
	}

	if err := e.register(s, ids); err != nil {
		if s.timer != nil {
			s.timer.Stop()
		}
		return nil, err
	}

	e.logger.Info("combat started",
		zap.String("session", s.ID),
		zap.String("initiator", initiatorID),
		zap.Strings("targets", req.TargetIDs),
		zap.String("battle_type", string(bt)),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

func (e *Engine) checkAvailable(ids []string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.availableLocked(ids)
}

// availableLocked requires e.mu to be held.
func (e *Engine) availableLocked(ids []string) error {
	if _, busy := e.index[ids[0]]; busy {
		return ErrAlreadyInCombat
	}
	for _, id := range ids[1:] {
		if _, busy := e.index[id]; busy && indexed(id) {
			return invalidAction("%s is already in combat", id)
		}
	}
	return nil
}

// register stores s and indexes ids, re-checking availability under the write lock.
func (e *Engine) register(s *Session, ids []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.availableLocked(ids); err != nil {
		return err
	}
	if _, dup := e.sessions[s.ID]; dup {
		return fmt.Errorf("combat: session id %q already registered", s.ID)
	}
	e.sessions[s.ID] = s
	for _, id := range ids {
		if indexed(id) {
			e.index[id] = s.ID
		}
	}
	return nil
}

func (e *Engine) lookup(sessionID string) *Session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sessions[sessionID]
}

// ProcessAction resolves actorID's action and then one AI action for every
// active non-player participant, stopping as soon as the session ends.
//
// Precondition: actorID is an active player participant of an active session.
// Postcondition: on error no participant state has changed, except that a
// COMBAT_TIMEOUT error ends the session.
func (e *Engine) ProcessAction(sessionID, actorID string, action Action) (*TurnOutcome, error) {
	s := e.lookup(sessionID)
	if s == nil {
		return nil, invalidAction("combat session %q not found", sessionID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != SessionActive {
		return nil, invalidAction("combat session %q is not active", sessionID)
	}
	if s.Round > e.cfg.MaxRounds {
		e.end(s, OutcomeTimeout)
		return nil, &Error{Code: CodeCombatTimeout, Message: fmt.Sprintf("combat exceeded %d rounds", e.cfg.MaxRounds)}
	}

	actor := s.participant(actorID)
	if actor == nil || actor.Team != TeamPlayer || !actor.IsActive() {
		return nil, invalidAction("%s cannot act in this combat", actorID)
	}
	if _, err := ParseActionType(string(action.Type)); err != nil {
		return nil, invalidAction("%v", err)
	}
	target, err := resolveTarget(s, actor, action)
	if err != nil {
		return nil, err
	}
	if err := checkResources(actor, action.Type); err != nil {
		return nil, err
	}
	if action.Timestamp.IsZero() {
		action.Timestamp = e.now()
	}

	out := &TurnOutcome{SessionID: s.ID, Round: s.Round}
	s.CurrentTurn = indexOf(s, actor)
	if e.resolve(s, actor, target, action, out) {
		return out, nil
	}

	for i, p := range s.Participants {
		if p.Team == TeamPlayer || !p.IsActive() {
			continue
		}
		s.CurrentTurn = i
		a, t := e.decide(s, p)
		if e.resolve(s, p, t, a, out) {
			return out, nil
		}
	}

	s.Round++
	s.CurrentTurn = 0
	s.lastActivity = e.now()
	if s.timer != nil {
		s.timer.Touch()
	}
	out.Status = s.Status
	return out, nil
}

// resolve executes one action, appends its result to out and reports whether
// the session ended.
func (e *Engine) resolve(s *Session, actor, target *Participant, a Action, out *TurnOutcome) bool {
	actor.TickBuffs()
	res := executeAction(s, e.roller, actor, target, a)
	summary := e.checkCombatEnd(s)
	res.Status = s.Status
	out.Results = append(out.Results, res)
	out.Status = s.Status
	if summary != nil {
		out.Summary = summary
		return true
	}
	return false
}

// decide asks the policy for p's action, downgrading to DEFEND when the
// choice cannot be carried out.
func (e *Engine) decide(s *Session, p *Participant) (Action, *Participant) {
	d := e.policy.Decide(e.worldState(s, p), ai.Profile{Passive: p.Passive, Hook: p.AIHook})
	a := Action{Type: ActionType(d.Action), TargetID: d.TargetID, Timestamp: e.now()}

	target, err := resolveTarget(s, p, a)
	if err == nil {
		err = checkResources(p, a.Type)
	}
	if err != nil {
		e.logger.Debug("ai action downgraded to defend",
			zap.String("session", s.ID),
			zap.String("actor", p.ID),
			zap.String("action", string(a.Type)),
			zap.Error(err),
		)
		return Action{Type: ActionDefend, Timestamp: a.Timestamp}, nil
	}
	return a, target
}

func (e *Engine) worldState(s *Session, actor *Participant) *ai.WorldState {
	ws := &ai.WorldState{Now: e.now()}
	for _, p := range s.Participants {
		c := &ai.CombatantState{
			ID:         p.ID,
			Name:       p.Name,
			Team:       ai.Team(p.Team),
			HP:         p.HP,
			MaxHP:      p.MaxHP,
			Mana:       p.Mana,
			MaxMana:    p.MaxMana,
			Stamina:    p.Stamina,
			MaxStamina: p.MaxStamina,
			Active:     p.IsActive(),
		}
		if s.BattleType == BattlePvP && p.Team == TeamPlayer {
			c.Team = ai.Team(s.side(p))
		}
		if p == actor {
			ws.Actor = c
		}
		ws.Combatants = append(ws.Combatants, c)
	}
	for _, l := range s.Log {
		ws.History = append(ws.History, ai.LogEntry{ActorID: l.ActorID, Action: ai.Action(l.Action), At: l.At})
	}
	return ws
}

// resolveTarget validates the target of a targeted action. An empty target
// selects the first active opponent in turn order.
func resolveTarget(s *Session, actor *Participant, a Action) (*Participant, error) {
	if !a.Type.targeted() {
		return nil, nil
	}
	if a.TargetID == "" {
		opponents := s.opponentsOf(actor)
		if len(opponents) == 0 {
			return nil, invalidAction("no target available for %s", actor.Name)
		}
		return opponents[0], nil
	}
	if a.TargetID == actor.ID {
		return nil, invalidAction("%s cannot target itself", actor.Name)
	}
	t := s.participant(a.TargetID)
	switch {
	case t == nil:
		return nil, invalidAction("target %q is not in this combat", a.TargetID)
	case !t.IsActive():
		return nil, invalidAction("target %s is no longer fighting", t.Name)
	case s.side(t) == s.side(actor):
		return nil, invalidAction("%s cannot attack an ally", actor.Name)
	}
	return t, nil
}

func indexOf(s *Session, p *Participant) int {
	for i, o := range s.Participants {
		if o == p {
			return i
		}
	}
	return 0
}

// expire force-ends an idle session.
func (e *Engine) expire(sessionID string) {
	s := e.lookup(sessionID)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status != SessionActive {
		return
	}
	// A round may have completed while this callback waited for the lock.
	if idle := e.now().Sub(s.lastActivity); idle < e.cfg.TurnTimeout {
		s.timer.Touch()
		return
	}
	e.logger.Info("combat turn timer expired",
		zap.String("session", s.ID),
		zap.Duration("timeout", e.cfg.TurnTimeout),
	)
	e.end(s, OutcomeTimeout)
}

// Session returns a snapshot of the active session with id.
//
// Postcondition: Returns (nil, false) for unknown or ended sessions.
func (e *Engine) Session(id string) (*Snapshot, bool) {
	s := e.lookup(id)
	if s == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status != SessionActive {
		return nil, false
	}
	return s.snapshot(), true
}

// SessionFor returns a snapshot of the active session participantID is in.
func (e *Engine) SessionFor(participantID string) (*Snapshot, bool) {
	e.mu.RLock()
	id, ok := e.index[participantID]
	e.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return e.Session(id)
}

// InCombat reports whether participantID is mapped to an active session.
func (e *Engine) InCombat(participantID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.index[participantID]
	return ok
}

// RegistryStats reports registry sizes.
type RegistryStats struct {
	Sessions     int
	Participants int
}

// Stats returns the current number of active sessions and indexed participants.
func (e *Engine) Stats() RegistryStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return RegistryStats{Sessions: len(e.sessions), Participants: len(e.index)}
}

// Close stops every turn timer. Active sessions are dropped with the process.
func (e *Engine) Close() {
	e.mu.RLock()
	sessions := make([]*Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.mu.RUnlock()
	for _, s := range sessions {
		if s.timer != nil {
			s.timer.Stop()
		}
	}
}
