package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := NewToken()
		require.NoError(t, err)

		assert.Len(t, token, 43) // 32 bytes, base64 without padding
		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true

		assert.False(t, strings.ContainsAny(token, "+/="), "token must be url safe")
	}
}
