package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGetDefaultLoggerIsStable(t *testing.T) {
	a := GetDefaultLogger()
	b := GetDefaultLogger()
	assert.Equal(t, a, b, "the root logger is created once")
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetLevel("off")
	assert.Equal(t, zerolog.Disabled, zerolog.GlobalLevel())

	SetLevel("nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
