package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(buf *bytes.Buffer, level Level) *Logger {
	fixed := time.Date(2024, time.March, 10, 14, 30, 0, 0, time.UTC)
	return New(
		WithOutput(buf),
		WithLevel(level),
		WithColors(false),
		WithClock(func() time.Time { return fixed }),
	)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, ERROR, ParseLevel(" ERROR "))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, WARN)

	l.Info("dropped")
	l.Warn("kept %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept 1")
	assert.True(t, strings.HasPrefix(out, "2024-03-10 14:30:00.000 WARN "))
}

func TestLogger_FieldsAreSortedAndInherited(t *testing.T) {
	var buf bytes.Buffer
	base := newTestLogger(&buf, DEBUG).WithPrefix("study")
	child := base.WithFields(map[string]any{"user_id": "u1", "card_id": 7}).WithError(errors.New("boom"))

	child.Info("rated")
	base.Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[study]")
	assert.True(t, strings.HasSuffix(lines[0], "rated card_id=7 error=boom user_id=u1"))
	assert.True(t, strings.HasSuffix(lines[1], "plain"), "parent is not affected by child fields")
}

func TestLogger_WithNilErrorIsNoop(t *testing.T) {
	l := New()
	assert.Same(t, l, l.WithError(nil))
}

func TestContext(t *testing.T) {
	assert.Same(t, Default(), FromContext(context.Background()))

	l := New(WithPrefix("req"))
	ctx := NewContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}
