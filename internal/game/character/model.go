// Package character defines the persisted character record consumed by the
// progression engine. The record is owned by the persistence layer and is
// read-only to everything in this module.
package character

import (
	"fmt"

	"github.com/cory-johannsen/ascend/internal/game/wide"
)

// Attribute identifies one of the six base attributes.
type Attribute int

const (
	Strength Attribute = iota
	Dexterity
	Intelligence
	Wisdom
	Constitution
	Charisma

	// NumAttributes is the number of base attributes.
	NumAttributes = 6
)

// AllAttributes lists every attribute in canonical order.
var AllAttributes = [NumAttributes]Attribute{Strength, Dexterity, Intelligence, Wisdom, Constitution, Charisma}

var attributeNames = [NumAttributes]string{"strength", "dexterity", "intelligence", "wisdom", "constitution", "charisma"}

// String returns the lowercase attribute name.
func (a Attribute) String() string {
	if a < 0 || int(a) >= NumAttributes {
		return "unknown"
	}
	return attributeNames[a]
}

// Class selects a per-attribute scaling table.
type Class string

const (
	ClassWarrior Class = "warrior"
	ClassRogue   Class = "rogue"
	ClassPaladin Class = "paladin"
	ClassRanger  Class = "ranger"
	ClassMage    Class = "mage"
	ClassCleric  Class = "cleric"
)

// Classes lists every known class.
var Classes = []Class{ClassWarrior, ClassRogue, ClassPaladin, ClassRanger, ClassMage, ClassCleric}

// Race selects a small flat modifier table.
type Race string

const (
	RaceHuman    Race = "human"
	RaceElf      Race = "elf"
	RaceDwarf    Race = "dwarf"
	RaceOrc      Race = "orc"
	RaceHalfling Race = "halfling"
)

// Races lists every known race.
var Races = []Race{RaceHuman, RaceElf, RaceDwarf, RaceOrc, RaceHalfling}

// Stats holds one integer per attribute, indexed by Attribute.
type Stats [NumAttributes]int

// WideStats holds one wide integer per attribute, indexed by Attribute.
type WideStats [NumAttributes]wide.Int

// Attributes is the persisted progression record of a character.
//
// Base values are nominally in [1,100]; Tiers are unbounded and non-negative.
// Paragon is only populated once Level >= 100.
type Attributes struct {
	ID    string
	Name  string
	Level int
	Class Class
	Race  Race

	Base    Stats
	Tiers   Stats
	Bonuses WideStats
	Paragon map[Attribute]wide.Int

	PrestigeLevel int
}

// ParagonFor returns the paragon points allocated to a; zero when unallocated.
func (c *Attributes) ParagonFor(a Attribute) wide.Int {
	if c.Paragon == nil {
		return wide.Zero
	}
	return c.Paragon[a]
}

// Validate checks the record's structural invariants.
//
// Postcondition: Returns nil iff Level >= 1, PrestigeLevel >= 0, every tier is
// non-negative, and no bonus or paragon value is negative.
func (c *Attributes) Validate() error {
	if c.Level < 1 {
		return fmt.Errorf("character %q: level must be >= 1, got %d", c.ID, c.Level)
	}
	if c.PrestigeLevel < 0 {
		return fmt.Errorf("character %q: prestige level must be >= 0, got %d", c.ID, c.PrestigeLevel)
	}
	for _, a := range AllAttributes {
		if c.Tiers[a] < 0 {
			return fmt.Errorf("character %q: %s tier must be >= 0", c.ID, a)
		}
		if c.Bonuses[a].Sign() < 0 {
			return fmt.Errorf("character %q: %s bonus must be >= 0", c.ID, a)
		}
		if c.ParagonFor(a).Sign() < 0 {
			return fmt.Errorf("character %q: %s paragon must be >= 0", c.ID, a)
		}
	}
	return nil
}
