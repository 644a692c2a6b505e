package progression

import "github.com/cory-johannsen/ascend/internal/game/character"

// raceModifiers holds the flat per-attribute adjustment for each race,
// indexed by character.Attribute.
var raceModifiers = map[character.Race]character.Stats{
	//                     STR DEX INT WIS CON CHA
	character.RaceHuman:    {1, 1, 1, 1, 1, 1},
	character.RaceElf:      {0, 3, 2, 1, -2, 0},
	character.RaceDwarf:    {2, -2, 0, 1, 3, 0},
	character.RaceOrc:      {4, 0, -2, 0, 2, -2},
	character.RaceHalfling: {-3, 4, 0, 0, 0, 2},
}

// classProfile is the scaling table for one class.
type classProfile struct {
	scaling      [character.NumAttributes]float64
	weaponFactor float64
}

var neutralProfile = classProfile{
	scaling:      [character.NumAttributes]float64{1, 1, 1, 1, 1, 1},
	weaponFactor: 1.0,
}

var classProfiles = map[character.Class]classProfile{
	//                                                  STR  DEX  INT  WIS  CON  CHA
	character.ClassWarrior: {scaling: [character.NumAttributes]float64{1.2, 1.0, 0.8, 0.9, 1.2, 1.0}, weaponFactor: 1.2},
	character.ClassRogue:   {scaling: [character.NumAttributes]float64{1.0, 1.3, 0.9, 0.9, 1.0, 1.1}, weaponFactor: 1.2},
	character.ClassPaladin: {scaling: [character.NumAttributes]float64{1.1, 0.9, 0.9, 1.1, 1.2, 1.1}, weaponFactor: 1.2},
	character.ClassRanger:  {scaling: [character.NumAttributes]float64{1.0, 1.2, 1.0, 1.1, 1.0, 1.0}, weaponFactor: 1.0},
	character.ClassMage:    {scaling: [character.NumAttributes]float64{0.8, 1.0, 1.3, 1.1, 0.9, 1.0}, weaponFactor: 0.8},
	character.ClassCleric:  {scaling: [character.NumAttributes]float64{0.9, 0.9, 1.1, 1.3, 1.0, 1.1}, weaponFactor: 0.8},
}

func profileFor(c character.Class) classProfile {
	if p, ok := classProfiles[c]; ok {
		return p
	}
	return neutralProfile
}

// ClassScalingFactor returns the scaling factor class c applies to attribute a.
// Unknown classes scale every attribute by 1.0.
func ClassScalingFactor(c character.Class, a character.Attribute) float64 {
	return profileFor(c).scaling[a]
}

// WeaponDamageFactor returns the placeholder weapon multiplier for class c:
// 1.2 for melee classes, 0.8 for casters, 1.0 otherwise.
func WeaponDamageFactor(c character.Class) float64 {
	return profileFor(c).weaponFactor
}

// RaceModifier returns the flat modifier race r applies to attribute a.
// Unknown races have no modifiers.
func RaceModifier(r character.Race, a character.Attribute) int {
	return raceModifiers[r][a]
}
