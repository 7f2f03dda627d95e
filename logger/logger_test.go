package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	dev, err := New("development")
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	prod, err := New("production")
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, prod.Core().Enabled(zapcore.InfoLevel))
}

func TestSetNilFallsBackToNop(t *testing.T) {
	Set(nil)
	assert.NotNil(t, L())

	l := zap.NewExample()
	Set(l)
	assert.Same(t, l, L())
	Set(nil)
}
