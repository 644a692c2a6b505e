package main

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ascend/internal/game/character"
	"github.com/cory-johannsen/ascend/internal/game/combat"
	"github.com/cory-johannsen/ascend/internal/game/progression"
	"github.com/cory-johannsen/ascend/internal/game/resource"
	"github.com/cory-johannsen/ascend/internal/game/wide"
)

type characterStore interface {
	GetCharacterStats(ctx context.Context, characterID string) (*character.Attributes, error)
}

type poolStore interface {
	GetResourcePool(ctx context.Context, participantID string) (*resource.Pool, error)
	Save(ctx context.Context, p *resource.Pool) error
}

// poolRecorder writes the post-combat HP, mana and stamina of every character
// participant back to its resource pool. Template and degraded participants
// are skipped.
//
// Summaries are saved one at a time in the order they were recorded, and
// GetResourcePool reports recorded but not yet saved values, so a character
// that re-enters combat sees the result of its last fight.
type poolRecorder struct {
	chars   characterStore
	pools   poolStore
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup

	mu       sync.Mutex
	queue    []queued
	draining bool
	// pending holds the latest unsaved resources per participant id.
	pending map[string]pendingPool
	seq     uint64
}

type queued struct {
	seq     uint64
	summary combat.Summary
}

type pendingPool struct {
	seq               uint64
	hp, mana, stamina int64
}

func newPoolRecorder(chars characterStore, pools poolStore, logger *zap.Logger) *poolRecorder {
	return &poolRecorder{
		chars:   chars,
		pools:   pools,
		logger:  logger,
		timeout: 5 * time.Second,
		now:     time.Now,
		pending: make(map[string]pendingPool),
	}
}

// Record queues s for persistence and returns without blocking. It is
// registered as the engine's end handler, which runs under the session lock.
func (r *poolRecorder) Record(s combat.Summary) {
	r.wg.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	for _, p := range s.Participants {
		if p.Template || p.Degraded {
			continue
		}
		r.pending[p.ID] = pendingPool{seq: r.seq, hp: int64(p.HP), mana: int64(p.Mana), stamina: int64(p.Stamina)}
	}
	r.queue = append(r.queue, queued{seq: r.seq, summary: s})
	if !r.draining {
		r.draining = true
		go r.drain()
	}
}

// drain saves queued summaries in order until the queue is empty.
func (r *poolRecorder) drain() {
	for {
		r.mu.Lock()
		if len(r.queue) == 0 {
			r.draining = false
			r.mu.Unlock()
			return
		}
		q := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		r.save(ctx, q.summary)
		cancel()
		r.settle(q)
		r.wg.Done()
	}
}

// settle drops pending entries that q wrote, unless a later summary replaced them.
func (r *poolRecorder) settle(q queued) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range q.summary.Participants {
		if e, ok := r.pending[p.ID]; ok && e.seq == q.seq {
			delete(r.pending, p.ID)
		}
	}
}

// Wait blocks until every pending Record has finished.
func (r *poolRecorder) Wait() {
	r.wg.Wait()
}

// GetResourcePool loads id's pool from the store, overlaid with any recorded
// result that has not been saved yet.
func (r *poolRecorder) GetResourcePool(ctx context.Context, id string) (*resource.Pool, error) {
	r.mu.Lock()
	e, queued := r.pending[id]
	r.mu.Unlock()

	pool, err := r.pools.GetResourcePool(ctx, id)
	if errors.Is(err, resource.ErrNotFound) && queued {
		pool, err = r.newPool(ctx, id)
	}
	if err != nil || !queued {
		return pool, err
	}
	pool.HP, pool.Mana, pool.Stamina = e.hp, e.mana, e.stamina
	pool.Normalize()
	return pool, nil
}

func (r *poolRecorder) save(ctx context.Context, s combat.Summary) {
	for _, p := range s.Participants {
		if p.Template || p.Degraded {
			continue
		}
		pool, err := r.pools.GetResourcePool(ctx, p.ID)
		if errors.Is(err, resource.ErrNotFound) {
			pool, err = r.newPool(ctx, p.ID)
		}
		if err != nil {
			r.logger.Warn("loading resource pool after combat",
				zap.String("session", s.SessionID),
				zap.String("participant", p.ID),
				zap.Error(err),
			)
			continue
		}
		pool.HP = int64(p.HP)
		pool.Mana = int64(p.Mana)
		pool.Stamina = int64(p.Stamina)
		pool.LastRegen = r.now()
		if err := r.pools.Save(ctx, pool); err != nil {
			r.logger.Warn("saving resource pool after combat",
				zap.String("session", s.SessionID),
				zap.String("participant", p.ID),
				zap.Error(err),
			)
		}
	}
}

// newPool seeds a pool from the character's derived maxima and regeneration rates.
func (r *poolRecorder) newPool(ctx context.Context, id string) (*resource.Pool, error) {
	c, err := r.chars.GetCharacterStats(ctx, id)
	if err != nil {
		return nil, err
	}
	d := progression.CalculateDerivedStats(c)
	maxOf := func(w wide.Int) int64 {
		n, _ := w.Saturate(1, math.MaxInt64)
		return n
	}
	return &resource.Pool{
		ParticipantID: id,
		MaxHP:         maxOf(d.Resources.MaxHP),
		MaxMana:       maxOf(d.Resources.MaxMana),
		MaxStamina:    maxOf(d.Resources.MaxStamina),
		Regen: resource.Rates{
			HP:      d.Regen.HP,
			Mana:    d.Regen.Mana,
			Stamina: d.Regen.Stamina,
		},
	}, nil
}
