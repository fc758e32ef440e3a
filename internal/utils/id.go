package utils

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const (
	roomCodeLength   = 6
	roomCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// NewUserID returns a globally unique user identifier.
func NewUserID() string {
	return uuid.NewString()
}

// NewRoomCode returns a short human-typable room code drawn uniformly from
// lowercase letters and digits. Uniqueness is not enforced here; the room
// store re-checks for collisions.
func NewRoomCode() string {
	buf := make([]byte, roomCodeLength)
	alphabetSize := big.NewInt(int64(len(roomCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			// Fallback to a uuid-derived code if crypto/rand is unavailable.
			return uuid.NewString()[:roomCodeLength]
		}
		buf[i] = roomCodeAlphabet[n.Int64()]
	}
	return string(buf)
}
