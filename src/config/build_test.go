package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	otpgen "github.com/aaravmaloo/otpgen/src"
)

func TestBuild(t *testing.T) {
	f, err := Parse([]byte(`{
  "rfc": {"secret": "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", "digits": 8},
  "github": "jbsw y3dp ehpk 3pxp",
  "sha512": {"secret": "MZXW6", "algorithm": "sha512", "period": 60}
}`))
	require.NoError(t, err)

	reg, err := Build(f, otpgen.WithClock(func() time.Time { return time.Unix(59, 0) }))
	require.NoError(t, err)
	assert.Equal(t, []string{"rfc", "github", "sha512"}, reg.Names())

	code, err := reg.Get("rfc")
	require.NoError(t, err)
	assert.Equal(t, "94287082", code)

	engine, err := reg.Engine("sha512")
	require.NoError(t, err)
	assert.Equal(t, uint32(60), engine.Step())
	assert.Equal(t, 6, engine.Digits())
}

func TestBuildReportsEachBadEntry(t *testing.T) {
	f, err := Parse([]byte(`{
  "good": "JBSWY3DPEHPK3PXP",
  "bad": "1INVALID8",
  "empty": "",
  "digits": {"secret": "MZXW6", "digits": 4},
  "alg": {"secret": "MZXW6", "algorithm": "md5"}
}`))
	require.NoError(t, err)

	reg, err := Build(f)
	require.Error(t, err)
	assert.Equal(t, []string{"good"}, reg.Names())

	assert.ErrorIs(t, err, otpgen.ErrInvalidEncoding)
	assert.ErrorIs(t, err, otpgen.ErrEmptySecret)
	assert.ErrorIs(t, err, otpgen.ErrInvalidParameter)

	failures := EntryErrors(err)
	require.Len(t, failures, 4)
	names := make([]string, 0, len(failures))
	for _, fe := range failures {
		names = append(names, fe.Name)
	}
	assert.Equal(t, []string{"bad", "empty", "digits", "alg"}, names)
	assert.ErrorIs(t, failures[0], otpgen.ErrInvalidEncoding)
	assert.Contains(t, failures[0].Error(), "bad: ")
}

func TestEntryErrorsNil(t *testing.T) {
	assert.Empty(t, EntryErrors(nil))
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := Watch(ctx, path)
	require.NoError(t, err)

	// Writes to other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0600))
	require.NoError(t, os.WriteFile(path, []byte(`{"a": "MZXW6"}`), 0600))

	select {
	case _, ok := <-w.Changes():
		require.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case <-w.Changes():
		// Drain any buffered notification, then expect closure.
		for range w.Changes() {
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
