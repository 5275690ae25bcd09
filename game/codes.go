package game

import (
	"math/rand/v2"
	"strings"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

func randomCode() string {
	var b strings.Builder
	b.Grow(codeLength)
	for range codeLength {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}

// newRoomCode generates a code not currently held by a live room or a
// pending match. The space is 36^6 so a handful of retries is plenty.
func newRoomCode(taken func(code string) bool) string {
	for {
		code := randomCode()
		if !taken(code) {
			return code
		}
	}
}

// ValidCode reports whether s has the shape of a room code. Shared with
// the short-link handlers.
func ValidCode(s string) bool {
	if len(s) != codeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
