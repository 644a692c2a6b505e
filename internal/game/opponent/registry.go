package opponent

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrTemplateNotFound is returned when a template id is not registered.
var ErrTemplateNotFound = errors.New("opponent template not found")

// TrainingDummyID is the id of the built-in Combat Training Dummy.
const TrainingDummyID = "test_dummy_001"

// TrainingDummy returns the built-in Combat Training Dummy: it never acts
// and cannot be defeated, so a session against it can only end by fleeing or
// by reaching the round ceiling.
func TrainingDummy() *Template {
	return &Template{
		ID:           TrainingDummyID,
		Name:         "Combat Training Dummy",
		Description:  "A straw-stuffed target on a wooden post.",
		Level:        1,
		MaxHP:        100_000,
		Behavior:     BehaviorPassive,
		Invulnerable: true,
		Stats: Stats{
			Attack:         1,
			Defense:        100,
			MagicalDefense: 100,
			Accuracy:       95,
			CriticalDamage: 100,
			WeaponMin:      1,
			WeaponMax:      1,
		},
	}
}

// Registry is an in-memory StaticOpponentSource.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry returns a Registry pre-populated with the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]*Template)}
	dummy := TrainingDummy()
	r.templates[dummy.ID] = dummy
	return r
}

// Register validates and stores tmpl, replacing any built-in with the same id.
//
// Postcondition: Returns an error when tmpl is invalid or its id was already
// registered by an earlier Register call.
func (r *Registry) Register(tmpl *Template) error {
	if tmpl == nil {
		return errors.New("opponent registry: template must not be nil")
	}
	if err := tmpl.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.templates[tmpl.ID]; ok && existing.ID != TrainingDummyID {
		return fmt.Errorf("opponent registry: template %q already registered", tmpl.ID)
	}
	r.templates[tmpl.ID] = tmpl
	return nil
}

// GetOpponent returns the template registered under id.
//
// Postcondition: Returns ErrTemplateNotFound when id is unknown.
func (r *Registry) GetOpponent(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	return tmpl, nil
}

// IDs returns every registered template id in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
