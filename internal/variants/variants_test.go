package variants

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeepsBaseFirst(t *testing.T) {
	got, err := Generate("  Alice ", 12)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "alice", got[0], "base is lowercased, trimmed, and always first")
}

func TestGenerateRespectsCap(t *testing.T) {
	got, err := Generate("alice", 5)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestGenerateNoDuplicates(t *testing.T) {
	got, err := Generate("alice", 50)
	require.NoError(t, err)

	seen := make(map[string]struct{}, len(got))
	for _, v := range got {
		_, dup := seen[v]
		assert.False(t, dup, "duplicate %q", v)
		seen[v] = struct{}{}
	}
}

func TestGenerateDerivesFromBase(t *testing.T) {
	got, err := Generate("alice", 30)
	require.NoError(t, err)

	for _, v := range got {
		stripped := strings.NewReplacer("_", "", ".", "").Replace(v)
		assert.Contains(t, stripped, "alice", "variant %q should derive from the base", v)
		assert.Equal(t, strings.ToLower(v), v)
	}
}

func TestGenerateEmptyBase(t *testing.T) {
	_, err := Generate("   ", 10)
	assert.Error(t, err)
}
