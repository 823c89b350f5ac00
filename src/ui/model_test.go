package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	otpgen "github.com/aaravmaloo/otpgen/src"
	"github.com/aaravmaloo/otpgen/src/config"
)

// base32 of the RFC 6238 SHA1 seed.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type fakeClipboard struct {
	copied []string
	err    error
}

func (c *fakeClipboard) Copy(s string) error {
	if c.err != nil {
		return c.err
	}
	c.copied = append(c.copied, s)
	return nil
}

func buildRegistry(t *testing.T, src string, clock *fakeClock) (*otpgen.Registry, error) {
	t.Helper()
	f, err := config.Parse([]byte(src))
	require.NoError(t, err)
	return config.Build(f, otpgen.WithClock(clock.Now))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestTickRefreshesCodes(t *testing.T) {
	clock := &fakeClock{now: time.Unix(59, 0)}
	reg, err := buildRegistry(t, `{"rfc": {"secret": "`+rfcSecret+`", "digits": 8}}`, clock)
	require.NoError(t, err)

	m := New(Options{Registry: reg, Clock: clock.Now})
	assert.Contains(t, m.View(), "94287082")

	clock.now = time.Unix(1111111109, 0)
	m, cmd := update(t, m, tickMsg(clock.now))
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "07081804")
	assert.NotContains(t, m.View(), "94287082")
}

func TestCopyFlashesAndClears(t *testing.T) {
	clock := &fakeClock{now: time.Unix(59, 0)}
	reg, err := buildRegistry(t, `{
  "first": "JBSWY3DPEHPK3PXP",
  "rfc": {"secret": "`+rfcSecret+`", "digits": 8}
}`, clock)
	require.NoError(t, err)

	clip := &fakeClipboard{}
	m := New(Options{Registry: reg, Clock: clock.Now, Copy: clip.Copy})

	m, _ = update(t, m, key("down"))
	m, cmd := update(t, m, key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"94287082"}, clip.copied)
	assert.Contains(t, m.View(), "Copied!")
	assert.NotContains(t, m.View(), "94287082")

	// A stale flash from an earlier copy does not clear the current one.
	m, _ = update(t, m, flashDoneMsg{seq: m.flashSeq - 1})
	assert.Contains(t, m.View(), "Copied!")

	m, _ = update(t, m, flashDoneMsg{seq: m.flashSeq})
	assert.NotContains(t, m.View(), "Copied!")
	assert.Contains(t, m.View(), "94287082")
}

func TestCopyFailureShowsStatus(t *testing.T) {
	clock := &fakeClock{now: time.Unix(59, 0)}
	reg, err := buildRegistry(t, `{"a": "JBSWY3DPEHPK3PXP"}`, clock)
	require.NoError(t, err)

	clip := &fakeClipboard{err: errors.New("no display")}
	m := New(Options{Registry: reg, Clock: clock.Now, Copy: clip.Copy})

	m, _ = update(t, m, key("c"))
	assert.Contains(t, m.View(), "copy failed: no display")
	assert.NotContains(t, m.View(), "Copied!")
}

func TestCursorStaysInRange(t *testing.T) {
	clock := &fakeClock{now: time.Unix(59, 0)}
	reg, err := buildRegistry(t, `{"a": "JBSWY3DPEHPK3PXP", "b": "MZXW6AAA"}`, clock)
	require.NoError(t, err)

	m := New(Options{Registry: reg, Clock: clock.Now})
	m, _ = update(t, m, key("up"))
	assert.Equal(t, 0, m.cursor)
	for i := 0; i < 5; i++ {
		m, _ = update(t, m, key("j"))
	}
	assert.Equal(t, 1, m.cursor)
}

func TestQuitKeys(t *testing.T) {
	m := New(Options{Clock: (&fakeClock{now: time.Unix(0, 0)}).Now})
	_, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestFailuresAreListed(t *testing.T) {
	clock := &fakeClock{now: time.Unix(59, 0)}
	reg, buildErr := buildRegistry(t, `{"good": "JBSWY3DPEHPK3PXP", "broken": "1INVALID8"}`, clock)
	require.Error(t, buildErr)

	m := New(Options{Registry: reg, Failures: buildErr, Clock: clock.Now})
	view := m.View()
	assert.Contains(t, view, "good")
	assert.Contains(t, view, "broken: invalid base32 secret")
}

func TestReloadSwapsRegistry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(59, 0)}
	reg, err := buildRegistry(t, `{"old": "JBSWY3DPEHPK3PXP"}`, clock)
	require.NoError(t, err)

	next := `{"new": {"secret": "` + rfcSecret + `", "digits": 8}}`
	changes := make(chan struct{}, 1)
	m := New(Options{
		Registry: reg,
		Clock:    clock.Now,
		Changes:  changes,
		Reload: func() (*otpgen.Registry, error) {
			return buildRegistry(t, next, clock)
		},
	})

	m, cmd := update(t, m, reloadMsg{})
	require.NotNil(t, cmd)
	view := m.View()
	assert.Contains(t, view, "new")
	assert.Contains(t, view, "94287082")
	assert.NotContains(t, view, "old")

	changes <- struct{}{}
	assert.Equal(t, reloadMsg{}, cmd())
}

func TestReloadFailureKeepsRegistry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(59, 0)}
	reg, err := buildRegistry(t, `{"kept": "JBSWY3DPEHPK3PXP"}`, clock)
	require.NoError(t, err)

	m := New(Options{
		Registry: reg,
		Clock:    clock.Now,
		Reload: func() (*otpgen.Registry, error) {
			return nil, config.ErrInvalidConfig
		},
	})

	m, _ = update(t, m, key("r"))
	view := m.View()
	assert.Contains(t, view, "kept")
	assert.Contains(t, view, "reload failed: invalid config file")
}

func TestWaitForChangeClosedChannel(t *testing.T) {
	ch := make(chan struct{})
	close(ch)
	assert.Nil(t, waitForChange(ch)())
	assert.Nil(t, waitForChange(nil))
}
