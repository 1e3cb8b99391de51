package internal

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	level, ok := ParseLogLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, LogLevelDebug, level)

	level, ok = ParseLogLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, LogLevelInfo, level)
}

func TestNewDefaultLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	assert.Equal(t, LogLevelWarn, NewDefaultLogger().GetLevel())

	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, LogLevelInfo, NewDefaultLogger().GetLevel())
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	}()

	l := NewLogger(LogLevelWarn)
	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("shown %d", 3)
	l.Error("shown %d", 4)

	assert.Equal(t, "[WARN] shown 3\n[ERROR] shown 4\n", buf.String())
	assert.False(t, l.Enabled(LogLevelInfo))
	assert.True(t, l.Enabled(LogLevelError))
}
