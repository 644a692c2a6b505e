package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEngineLog_WritesToLogger(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "log.lua", `
		function do_log()
			engine.log.info("hello from lua")
			engine.log.warn("careful")
		end
	`), 0))
	out, err := mgr.CallHookTable("do_log", nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	assert.Equal(t, 1, logs.FilterMessage("lua: hello from lua").FilterLevelExact(zap.InfoLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("lua: careful").FilterLevelExact(zap.WarnLevel).Len())
}

func TestEngineDice_BetweenStaysInRange(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "dice.lua", `
		function roll() return { v = engine.dice.between(3, 6) } end
		function always()
			if engine.dice.chance(100) then return { v = 1 } end
			return { v = 0 }
		end
	`), 0))

	for i := 0; i < 50; i++ {
		n, ok := value(t, mgr, "roll", nil)
		require.True(t, ok)
		assert.GreaterOrEqual(t, n, 3.0)
		assert.LessOrEqual(t, n, 6.0)
	}
	assert.NotZero(t, logs.FilterMessage("dice range").Len(), "lua rolls go through the audited roller")

	v, ok := value(t, mgr, "always", nil)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}
