package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetup(t *testing.T) {
	require.NoError(t, Setup("hintrun", "test"))
	require.NotNil(t, Logger)
	assert.Same(t, Logger, zap.L())
	assert.False(t, Logger.Core().Enabled(zapcore.DebugLevel))
}

func TestSetVerbose(t *testing.T) {
	require.NoError(t, Setup("hintrun", "test"))
	t.Cleanup(func() { SetVerbose(false) })

	SetVerbose(true)
	assert.True(t, Verbose())
	assert.True(t, Logger.Core().Enabled(zapcore.DebugLevel))

	SetVerbose(false)
	assert.False(t, Verbose())
	assert.False(t, Logger.Core().Enabled(zapcore.DebugLevel))
}
