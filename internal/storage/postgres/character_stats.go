package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/ascend/internal/game/character"
	"github.com/cory-johannsen/ascend/internal/game/wide"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// attributeColumns returns prefix_<attribute> for every attribute in canonical order.
func attributeColumns(prefix string) []string {
	cols := make([]string, 0, character.NumAttributes)
	for _, a := range character.AllAttributes {
		cols = append(cols, prefix+"_"+a.String())
	}
	return cols
}

var characterStatsColumns = strings.Join(append(append(append(append(
	[]string{"id", "name", "level", "class", "race"},
	attributeColumns("base")...),
	attributeColumns("tier")...),
	attributeColumns("bonus")...),
	attributeColumns("paragon")...), ", ") + ", prestige_level"

// CharacterStatsRepository persists character progression records.
// It implements the combat adapter's CharacterStatsSource.
type CharacterStatsRepository struct {
	db *pgxpool.Pool
}

// NewCharacterStatsRepository creates a CharacterStatsRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterStatsRepository(db *pgxpool.Pool) *CharacterStatsRepository {
	return &CharacterStatsRepository{db: db}
}

// GetCharacterStats retrieves the progression record of characterID.
//
// Postcondition: Returns the record or ErrCharacterNotFound. Paragon entries
// are present only for attributes with a non-NULL paragon column.
func (r *CharacterStatsRepository) GetCharacterStats(ctx context.Context, characterID string) (*character.Attributes, error) {
	var (
		c       character.Attributes
		class   string
		race    string
		bonus   [character.NumAttributes]pgtype.Numeric
		paragon [character.NumAttributes]pgtype.Numeric
	)
	dest := []any{&c.ID, &c.Name, &c.Level, &class, &race}
	for i := range character.AllAttributes {
		dest = append(dest, &c.Base[i])
	}
	for i := range character.AllAttributes {
		dest = append(dest, &c.Tiers[i])
	}
	for i := range character.AllAttributes {
		dest = append(dest, &bonus[i])
	}
	for i := range character.AllAttributes {
		dest = append(dest, &paragon[i])
	}
	dest = append(dest, &c.PrestigeLevel)

	err := r.db.QueryRow(ctx,
		`SELECT `+characterStatsColumns+` FROM character_stats WHERE id = $1`,
		characterID,
	).Scan(dest...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character stats: %w", err)
	}
	c.Class = character.Class(class)
	c.Race = character.Race(race)

	for i, a := range character.AllAttributes {
		if c.Bonuses[i], err = numericToWide(bonus[i]); err != nil {
			return nil, fmt.Errorf("character %q %s bonus: %w", characterID, a, err)
		}
		if !paragon[i].Valid {
			continue
		}
		p, err := numericToWide(paragon[i])
		if err != nil {
			return nil, fmt.Errorf("character %q %s paragon: %w", characterID, a, err)
		}
		if c.Paragon == nil {
			c.Paragon = make(map[character.Attribute]wide.Int)
		}
		c.Paragon[a] = p
	}
	return &c, nil
}

// Save inserts or replaces the progression record of c.
//
// Precondition: c must pass Validate.
// Postcondition: A subsequent GetCharacterStats(c.ID) returns an equal record.
func (r *CharacterStatsRepository) Save(ctx context.Context, c *character.Attributes) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("saving character stats: %w", err)
	}
	args := []any{c.ID, c.Name, c.Level, string(c.Class), string(c.Race)}
	for _, a := range character.AllAttributes {
		args = append(args, c.Base[a])
	}
	for _, a := range character.AllAttributes {
		args = append(args, c.Tiers[a])
	}
	for _, a := range character.AllAttributes {
		args = append(args, wideToNumeric(c.Bonuses[a]))
	}
	for _, a := range character.AllAttributes {
		if p, ok := c.Paragon[a]; ok {
			args = append(args, wideToNumeric(p))
		} else {
			args = append(args, pgtype.Numeric{})
		}
	}
	args = append(args, c.PrestigeLevel)

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	cols := strings.Split(characterStatsColumns, ", ")
	updates := make([]string, 0, len(cols)-1)
	for _, col := range cols[1:] {
		updates = append(updates, col+" = EXCLUDED."+col)
	}
	updates = append(updates, "updated_at = NOW()")

	_, err := r.db.Exec(ctx,
		`INSERT INTO character_stats (`+characterStatsColumns+`)
		VALUES (`+strings.Join(placeholders, ", ")+`)
		ON CONFLICT (id) DO UPDATE SET `+strings.Join(updates, ", "),
		args...,
	)
	if err != nil {
		return fmt.Errorf("saving character stats: %w", err)
	}
	return nil
}
