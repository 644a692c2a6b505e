package combat

// DefendingBuffID identifies the buff applied by DEFEND.
const DefendingBuffID = "defending"

// Stats is the frozen combat profile captured when a participant is created.
// Chances and CriticalDamage are percentages.
type Stats struct {
	Attack         float64
	Defense        float64
	MagicalAttack  float64
	MagicalDefense float64
	Speed          float64
	CriticalChance float64
	CriticalDamage float64
	DodgeChance    float64
	BlockChance    float64
	Accuracy       float64
	WeaponMin      int
	WeaponMax      int
}

// Buff is a timed modifier. Duration counts the owner's remaining turns.
type Buff struct {
	ID       string
	Name     string
	Duration int
	Modifier float64
}

// Participant is one combatant in a Session.
//
// Invariant: 0 <= HP <= MaxHP, 0 <= Mana <= MaxMana, 0 <= Stamina <= MaxStamina.
type Participant struct {
	ID         string
	Name       string
	Team       Team
	Status     Status
	Level      int
	HP         int
	MaxHP      int
	Mana       int
	MaxMana    int
	Stamina    int
	MaxStamina int
	Buffs      []Buff
	Stats      Stats

	// Degraded is set when stats could not be loaded and defaults were used.
	Degraded bool
	// Template is set for participants built from a static opponent template.
	Template bool
	// Passive participants always pass when driven by the AI.
	Passive bool
	// AIHook names a script hook consulted for AI weights.
	AIHook string
	// Invulnerable participants never drop below 1 HP.
	Invulnerable bool
}

// IsActive reports whether p can still act and be targeted.
func (p *Participant) IsActive() bool { return p.Status == StatusActive }

// ApplyDamage reduces HP by amount, flooring at zero (one when Invulnerable),
// and marks p defeated at zero.
//
// Precondition: amount >= 0.
// Postcondition: HP >= 0; Status == StatusDefeated iff HP reached 0.
func (p *Participant) ApplyDamage(amount int) {
	floor := 0
	if p.Invulnerable {
		floor = min(1, p.HP)
	}
	p.HP = max(p.HP-amount, floor)
	if p.HP == 0 && p.Status == StatusActive {
		p.Status = StatusDefeated
	}
}

// Heal raises HP by amount up to MaxHP and returns the HP actually restored.
func (p *Participant) Heal(amount int) int {
	before := p.HP
	p.HP = min(p.HP+max(amount, 0), p.MaxHP)
	return p.HP - before
}

// AdjustStamina adds delta to Stamina within [0, MaxStamina] and returns the applied change.
func (p *Participant) AdjustStamina(delta int) int {
	before := p.Stamina
	p.Stamina = min(max(p.Stamina+delta, 0), p.MaxStamina)
	return p.Stamina - before
}

// AdjustMana adds delta to Mana within [0, MaxMana] and returns the applied change.
func (p *Participant) AdjustMana(delta int) int {
	before := p.Mana
	p.Mana = min(max(p.Mana+delta, 0), p.MaxMana)
	return p.Mana - before
}

// Buff returns the buff with id, if present.
func (p *Participant) Buff(id string) (Buff, bool) {
	for _, b := range p.Buffs {
		if b.ID == id {
			return b, true
		}
	}
	return Buff{}, false
}

// AddBuff appends b unless a buff with the same ID is already present.
//
// Postcondition: p.Buffs holds at most one entry per ID. Returns false when b was not added.
func (p *Participant) AddBuff(b Buff) bool {
	if _, ok := p.Buff(b.ID); ok {
		return false
	}
	p.Buffs = append(p.Buffs, b)
	return true
}

// TickBuffs decrements every buff's duration and drops the expired ones.
func (p *Participant) TickBuffs() {
	kept := p.Buffs[:0]
	for _, b := range p.Buffs {
		b.Duration--
		if b.Duration > 0 {
			kept = append(kept, b)
		}
	}
	p.Buffs = kept
}

// clone returns a deep copy of p.
func (p *Participant) clone() Participant {
	c := *p
	c.Buffs = append([]Buff(nil), p.Buffs...)
	return c
}
