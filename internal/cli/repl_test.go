package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/optimal/internal/engine"
	"github.com/roach88/optimal/internal/term"
)

func newTestSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	return newSession(buf, testModules(t)), buf
}

func handle(t *testing.T, s *session, line string) (bool, error) {
	t.Helper()
	return s.handle(context.Background(), line)
}

func TestSession_EvaluatesTerms(t *testing.T) {
	s, buf := newTestSession(t)

	quit, err := handle(t, s, "(λx. x) (λy. y)")
	require.NoError(t, err)
	assert.False(t, quit)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "λa. a", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `{"loops":`))
}

func TestSession_ToggleStats(t *testing.T) {
	s, buf := newTestSession(t)

	_, err := handle(t, s, ":stats")
	require.NoError(t, err)
	assert.Equal(t, "statistics off\n", buf.String())

	buf.Reset()
	_, err = handle(t, s, `\x y. x`)
	require.NoError(t, err)
	assert.Equal(t, "λa b. a\n", buf.String())
}

func TestSession_LoadModule(t *testing.T) {
	s, buf := newTestSession(t)
	s.stats = false

	_, err := handle(t, s, "not true")
	require.Error(t, err)
	assert.True(t, term.IsUnbound(err))

	_, err = handle(t, s, ":load bool")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "loaded bool#")
	assert.Contains(t, buf.String(), "(3 definitions)")

	buf.Reset()
	_, err = handle(t, s, "not true")
	require.NoError(t, err)
	assert.Equal(t, "λa b. b\n", buf.String())

	buf.Reset()
	_, err = handle(t, s, ":defs")
	require.NoError(t, err)
	assert.Equal(t, "false = λt f. f\nnot = λb. b bool/false bool/true\ntrue = λt f. t\n", buf.String())
}

func TestSession_ImportsByQualifiedName(t *testing.T) {
	s, buf := newTestSession(t)
	s.stats = false

	_, err := handle(t, s, ":load main")
	require.NoError(t, err)

	buf.Reset()
	_, err = handle(t, s, "bool/not main")
	require.NoError(t, err)
	assert.Equal(t, "λa b. b\n", buf.String())
}

func TestSession_Weak(t *testing.T) {
	s, buf := newTestSession(t)
	s.stats = false

	_, err := handle(t, s, ":weak")
	require.NoError(t, err)
	assert.Equal(t, "weak mode on\n", buf.String())
	assert.True(t, s.weak)

	_, err = handle(t, s, ":weak")
	require.NoError(t, err)
	assert.False(t, s.weak)
}

func TestSession_Budget(t *testing.T) {
	s, _ := newTestSession(t)
	s.maxRewrites = 50
	_, err := handle(t, s, ":load main")
	require.NoError(t, err)

	_, err = handle(t, s, "spin")
	require.Error(t, err)
	assert.Equal(t, engine.ErrCodeBudgetExceeded, engine.ErrorCode(err))
}

func TestSession_Commands(t *testing.T) {
	s, buf := newTestSession(t)

	quit, err := handle(t, s, "   ")
	require.NoError(t, err)
	assert.False(t, quit)

	_, err = handle(t, s, "-- a comment")
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	_, err = handle(t, s, ":help")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), ":load <module>")

	buf.Reset()
	_, err = handle(t, s, ":defs")
	require.NoError(t, err)
	assert.Equal(t, "no module loaded\n", buf.String())

	_, err = handle(t, s, ":load")
	require.Error(t, err)

	_, err = handle(t, s, ":load nope")
	require.Error(t, err)

	_, err = handle(t, s, ":frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")

	_, err = handle(t, s, "λx.")
	require.Error(t, err)
	var se *term.SyntaxError
	assert.ErrorAs(t, err, &se)

	quit, err = handle(t, s, ":q")
	require.NoError(t, err)
	assert.True(t, quit)

	quit, err = handle(t, s, ":quit")
	require.NoError(t, err)
	assert.True(t, quit)
}
