package utils

import (
	"crypto/rand"
	"math/big"
)

const roomSuffixLen = 6

const roomSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRoomName appends a short random alphanumeric suffix to base.
// The suffix reduces collisions but does not rule them out.
func GenerateRoomName(base string) (string, error) {
	suffix := make([]byte, roomSuffixLen)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomSuffixAlphabet))))
		if err != nil {
			return "", err
		}
		suffix[i] = roomSuffixAlphabet[n.Int64()]
	}
	return base + "-" + string(suffix), nil
}
