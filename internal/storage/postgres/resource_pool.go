package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/ascend/internal/game/resource"
)

// ErrResourcePoolNotFound is returned when no pool row exists for a participant.
// It matches resource.ErrNotFound under errors.Is.
var ErrResourcePoolNotFound = fmt.Errorf("postgres: %w", resource.ErrNotFound)

// ResourcePoolRepository persists resource pools and applies lazy regeneration
// on every read. It implements the combat adapter's ResourcePoolSource.
type ResourcePoolRepository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewResourcePoolRepository creates a ResourcePoolRepository backed by the given pool.
// A nil now uses time.Now.
//
// Precondition: db must be a valid, open connection pool.
func NewResourcePoolRepository(db *pgxpool.Pool, now func() time.Time) *ResourcePoolRepository {
	if now == nil {
		now = time.Now
	}
	return &ResourcePoolRepository{db: db, now: now}
}

// GetResourcePool loads participantID's pool and regenerates it up to now.
// The regenerated values are returned but not written back; Save persists them.
//
// Postcondition: Returns a normalized pool or ErrResourcePoolNotFound.
func (r *ResourcePoolRepository) GetResourcePool(ctx context.Context, participantID string) (*resource.Pool, error) {
	p := resource.Pool{ParticipantID: participantID}
	err := r.db.QueryRow(ctx, `
		SELECT hp, max_hp, mana, max_mana, stamina, max_stamina,
		       hp_regen, mana_regen, stamina_regen, last_regen_at
		FROM resource_pools WHERE participant_id = $1`,
		participantID,
	).Scan(
		&p.HP, &p.MaxHP, &p.Mana, &p.MaxMana, &p.Stamina, &p.MaxStamina,
		&p.Regen.HP, &p.Regen.Mana, &p.Regen.Stamina, &p.LastRegen,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResourcePoolNotFound
		}
		return nil, fmt.Errorf("querying resource pool: %w", err)
	}
	p.Regenerate(r.now())
	return &p, nil
}

// Save inserts or replaces p. The pool is normalized before writing and a zero
// LastRegen is stamped with the current time.
//
// Precondition: p.ParticipantID must be non-empty.
func (r *ResourcePoolRepository) Save(ctx context.Context, p *resource.Pool) error {
	if p.ParticipantID == "" {
		return errors.New("saving resource pool: participant id must not be empty")
	}
	p.Normalize()
	if p.LastRegen.IsZero() {
		p.LastRegen = r.now()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO resource_pools
			(participant_id, hp, max_hp, mana, max_mana, stamina, max_stamina,
			 hp_regen, mana_regen, stamina_regen, last_regen_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (participant_id) DO UPDATE SET
			hp = EXCLUDED.hp, max_hp = EXCLUDED.max_hp,
			mana = EXCLUDED.mana, max_mana = EXCLUDED.max_mana,
			stamina = EXCLUDED.stamina, max_stamina = EXCLUDED.max_stamina,
			hp_regen = EXCLUDED.hp_regen, mana_regen = EXCLUDED.mana_regen,
			stamina_regen = EXCLUDED.stamina_regen, last_regen_at = EXCLUDED.last_regen_at`,
		p.ParticipantID, p.HP, p.MaxHP, p.Mana, p.MaxMana, p.Stamina, p.MaxStamina,
		p.Regen.HP, p.Regen.Mana, p.Regen.Stamina, p.LastRegen,
	)
	if err != nil {
		return fmt.Errorf("saving resource pool: %w", err)
	}
	return nil
}
