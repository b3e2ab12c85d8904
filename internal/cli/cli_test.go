package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (Options, []string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	opts, handles, err := Parse(args, &stdout, &stderr)
	require.NoError(t, err)
	return opts, handles
}

func TestParseDefaults(t *testing.T) {
	opts, handles := parse(t, "alice", "bob")

	assert.Equal(t, []string{"alice", "bob"}, handles)
	assert.Equal(t, 10*time.Second, opts.Timeout)
	assert.Equal(t, 25, opts.Concurrency)
	assert.Equal(t, 50, opts.ConnLimit)
	assert.Equal(t, 12, opts.MaxVariants)
	assert.Empty(t, opts.Set)
}

func TestParseTracksExplicitFlags(t *testing.T) {
	opts, handles := parse(t, "--timeout", "30", "--concurrency", "5", "--show-uncertain", "alice")

	assert.Equal(t, []string{"alice"}, handles)
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.Equal(t, 5, opts.Concurrency)
	assert.True(t, opts.ShowUncertain)

	assert.True(t, opts.Set["timeout"])
	assert.True(t, opts.Set["concurrency"])
	assert.False(t, opts.Set["conn-limit"])
}

func TestParseInvalidTimeoutResets(t *testing.T) {
	opts, _ := parse(t, "--no-color", "--timeout", "0", "alice")
	assert.Equal(t, 10*time.Second, opts.Timeout)
}

func TestParseHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	_, _, err := Parse([]string{"--help"}, &stdout, &stderr)
	assert.ErrorIs(t, err, ErrHelp)
	assert.Contains(t, stdout.String(), "usage:")
}
