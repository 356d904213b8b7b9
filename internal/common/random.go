package common

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

const joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MakeRandHexString returns size random bytes encoded as hex.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MakeJoinCode returns an upper case alphanumeric code of length n.
func MakeJoinCode(n int) (string, error) {
	limit := big.NewInt(int64(len(joinCodeAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = joinCodeAlphabet[idx.Int64()]
	}
	return string(out), nil
}

// WipeByteArray zeroes b. Safe on nil.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
