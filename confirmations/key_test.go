package confirmations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		key, err := NewKey()
		require.NoError(t, err)
		require.Len(t, key, 64)
		for _, r := range key {
			require.True(t, strings.ContainsRune(keyAlphabet, r), "unexpected rune %q", r)
		}
		require.False(t, seen[key], "duplicate key generated")
		seen[key] = true
	}
}
