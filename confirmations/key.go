package confirmations

import (
	"crypto/rand"
	"math/big"
)

// keyLength matches the width of the persisted key column.
const keyLength = 64

// keyAlphabet keeps keys lowercase so they survive case-folding mail clients
// and URL handling.
const keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewKey returns a 64-character lowercase random key. It draws from
// crypto/rand so keys are computationally infeasible to guess.
func NewKey() (string, error) {
	max := big.NewInt(int64(len(keyAlphabet)))
	buf := make([]byte, keyLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = keyAlphabet[n.Int64()]
	}
	return string(buf), nil
}
