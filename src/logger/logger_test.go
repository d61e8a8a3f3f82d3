package logger

import (
	"bytes"
	"testing"

	"gridwatch/src/models"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFromConfig(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithOutput(&models.MConfig{LogLevel: "WARNING"}, "Test", &buf)

	l.Info("hidden %d", 1)
	assert.Empty(t, buf.String())

	l.Warning("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "component=Test")
}

func TestLogger_NilConfigDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithOutput(nil, "Test", &buf)

	l.Debug("debug")
	assert.Empty(t, buf.String())

	l.Info("info")
	assert.Contains(t, buf.String(), "info")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithOutput(nil, "Pipeline", &buf).With("zone", "SE3")

	l.Error("boom")
	assert.Contains(t, buf.String(), "zone=SE3")
	assert.Equal(t, "Pipeline", l.Name())
}

func TestLogger_CriticalExits(t *testing.T) {
	var buf bytes.Buffer
	code := -1
	orig := exit
	exit = func(c int) { code = c }
	defer func() { exit = orig }()

	NewLoggerWithOutput(nil, "Main", &buf).Critical("fatal %s", "config")
	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "fatal config")
}
