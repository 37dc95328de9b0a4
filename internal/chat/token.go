package chat

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes gives 256 bits of entropy, well past the 128 bit floor for an
// unguessable bearer token.
const tokenBytes = 32

// NewToken returns a URL-safe session token with no derivable structure. If
// the randomness source fails, session creation must fail with it; the error
// is never swallowed or retried.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("unable to read randomness for session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
