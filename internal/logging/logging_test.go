package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/choidage/daker/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logging.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, logging.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, logging.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, logging.LevelInfo, logging.ParseLevel("nonsense"))
	assert.Equal(t, logging.LevelInfo, logging.ParseLevel(""))
}

func TestLogger_FiltersAndFormats(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf, logging.LevelInfo).With("gate")

	l.Debugf("hidden %d", 1)
	l.Warnf("remote failed file=%s", "a.py")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN gate: remote failed file=a.py")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestLogger_NilIsSafe(t *testing.T) {
	var l *logging.Logger
	assert.NotPanics(t, func() {
		l.Infof("x")
		l.With("y").Errorf("z")
	})
	assert.False(t, l.Enabled(logging.LevelError))
}

func TestDiscard(t *testing.T) {
	assert.False(t, logging.Discard().Enabled(logging.LevelError))
}
