package opponent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/ascend/internal/game/opponent"
)

func TestRegistry_TrainingDummyBuiltIn(t *testing.T) {
	r := opponent.NewRegistry()
	dummy, err := r.GetOpponent(opponent.TrainingDummyID)
	require.NoError(t, err)
	assert.Equal(t, "Combat Training Dummy", dummy.Name)
	assert.Equal(t, 1.0, dummy.Stats.Attack)
	assert.Equal(t, 100.0, dummy.Stats.Defense)
	assert.Equal(t, opponent.BehaviorPassive, dummy.Behavior)
	assert.True(t, dummy.Invulnerable)
	assert.NoError(t, dummy.Validate())
}

func TestRegistry_GetOpponent_NotFound(t *testing.T) {
	r := opponent.NewRegistry()
	_, err := r.GetOpponent("test_nobody")
	assert.ErrorIs(t, err, opponent.ErrTemplateNotFound)
}

func TestRegistry_Register(t *testing.T) {
	r := opponent.NewRegistry()
	tmpl, err := opponent.LoadTemplateFromBytes([]byte(goblinYAML))
	require.NoError(t, err)

	require.NoError(t, r.Register(tmpl))
	got, err := r.GetOpponent("test_goblin_001")
	require.NoError(t, err)
	assert.Same(t, tmpl, got)
	assert.Equal(t, []string{opponent.TrainingDummyID, "test_goblin_001"}, r.IDs())

	assert.Error(t, r.Register(tmpl), "duplicate ids are rejected")
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&opponent.Template{ID: "nope"}))
}

func TestRegistry_OverrideDummy(t *testing.T) {
	r := opponent.NewRegistry()
	custom := opponent.TrainingDummy()
	custom.MaxHP = 5
	require.NoError(t, r.Register(custom))
	got, err := r.GetOpponent(opponent.TrainingDummyID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.MaxHP)
}

func TestIsTemplateID(t *testing.T) {
	assert.True(t, opponent.IsTemplateID("test_dummy_001"))
	assert.False(t, opponent.IsTemplateID("p1"))
	assert.False(t, opponent.IsTemplateID("tester"))
}
