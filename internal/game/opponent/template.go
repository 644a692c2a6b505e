// Package opponent provides static opponent templates for scripted and
// training encounters. Template ids share a reserved prefix so the combat
// engine can tell them apart from character ids.
package opponent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/ascend/internal/game/dice"
)

// ReservedPrefix marks an id as a static opponent template.
const ReservedPrefix = "test_"

// IsTemplateID reports whether id names a static opponent template.
func IsTemplateID(id string) bool {
	return strings.HasPrefix(id, ReservedPrefix)
}

// Behavior selects how the AI policy drives an opponent.
type Behavior string

const (
	// BehaviorDefault uses the weighted attack/skill/defend policy.
	BehaviorDefault Behavior = ""
	// BehaviorPassive always passes.
	BehaviorPassive Behavior = "passive"
)

// Template defines a reusable opponent loaded from YAML.
type Template struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Level       int      `yaml:"level"`
	MaxHP       int      `yaml:"max_hp"`
	MaxMana     int      `yaml:"max_mana"`
	MaxStamina  int      `yaml:"max_stamina"`
	Behavior    Behavior `yaml:"behavior"`
	// Invulnerable templates never drop below 1 HP.
	Invulnerable bool `yaml:"invulnerable"`
	// AIHook names a Lua function consulted for weight multipliers; empty = none.
	AIHook string `yaml:"ai_hook"`
	Stats  Stats  `yaml:"stats"`
	// WeaponDamage is a dice expression ("1d6+2"); it takes precedence over
	// Stats.WeaponMin/WeaponMax when set.
	WeaponDamage string `yaml:"weapon_damage"`
}

// Stats is the frozen combat profile of a template.
type Stats struct {
	Attack         float64 `yaml:"attack"`
	Defense        float64 `yaml:"defense"`
	MagicalAttack  float64 `yaml:"magical_attack"`
	MagicalDefense float64 `yaml:"magical_defense"`
	Speed          float64 `yaml:"speed"`
	CriticalChance float64 `yaml:"critical_chance"`
	CriticalDamage float64 `yaml:"critical_damage"`
	DodgeChance    float64 `yaml:"dodge_chance"`
	BlockChance    float64 `yaml:"block_chance"`
	Accuracy       float64 `yaml:"accuracy"`
	WeaponMin      int     `yaml:"weapon_min"`
	WeaponMax      int     `yaml:"weapon_max"`
}

// WeaponRange returns the weapon damage range, resolving WeaponDamage when set.
//
// Precondition: t passed Validate.
func (t *Template) WeaponRange() (lo, hi int) {
	if t.WeaponDamage != "" {
		if expr, err := dice.Parse(t.WeaponDamage); err == nil {
			lo, hi = expr.Bounds()
			return max(lo, 0), max(hi, lo, 0)
		}
	}
	return t.Stats.WeaponMin, t.Stats.WeaponMax
}

// Validate checks that the template satisfies basic invariants.
//
// Postcondition: Returns nil iff the id carries ReservedPrefix, Name is non-empty,
// Level >= 1, MaxHP >= 1, mana and stamina are non-negative, percentages lie in
// [0, 100], the weapon range is well-formed, and Behavior is known.
func (t *Template) Validate() error {
	if !IsTemplateID(t.ID) {
		return fmt.Errorf("opponent template %q: id must start with %q", t.ID, ReservedPrefix)
	}
	if t.Name == "" {
		return fmt.Errorf("opponent template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("opponent template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("opponent template %q: max_hp must be >= 1", t.ID)
	}
	if t.MaxMana < 0 || t.MaxStamina < 0 {
		return fmt.Errorf("opponent template %q: max_mana and max_stamina must be >= 0", t.ID)
	}
	for name, pct := range map[string]float64{
		"critical_chance": t.Stats.CriticalChance,
		"dodge_chance":    t.Stats.DodgeChance,
		"block_chance":    t.Stats.BlockChance,
	} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("opponent template %q: %s must be in [0, 100], got %v", t.ID, name, pct)
		}
	}
	if t.WeaponDamage != "" {
		if _, err := dice.Parse(t.WeaponDamage); err != nil {
			return fmt.Errorf("opponent template %q: weapon_damage: %w", t.ID, err)
		}
	} else if t.Stats.WeaponMin < 0 || t.Stats.WeaponMax < t.Stats.WeaponMin {
		return fmt.Errorf("opponent template %q: weapon range [%d, %d] is invalid", t.ID, t.Stats.WeaponMin, t.Stats.WeaponMax)
	}
	switch t.Behavior {
	case BehaviorDefault, BehaviorPassive:
	default:
		return fmt.Errorf("opponent template %q: unknown behavior %q", t.ID, t.Behavior)
	}
	return nil
}

// LoadTemplateFromBytes parses a single opponent template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate failure.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading opponent dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
