// Package identity validates caller-supplied owner identities. An
// identity is a base58check-encoded public-key hash; the engine checks
// the encoding and checksum only and proves nothing cryptographically.
package identity

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
)

const (
	minEncodedLen = 32
	maxEncodedLen = 35
	checksumLen   = 4

	base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
)

var base58Index = func() map[byte]int64 {
	m := make(map[byte]int64, len(base58Alphabet))
	for i := 0; i < len(base58Alphabet); i++ {
		m[base58Alphabet[i]] = int64(i)
	}
	return m
}()

// ValidatePKH checks encoded length and base58check checksum of a
// public-key-hash identity string.
func ValidatePKH(s string) error {
	s = strings.TrimSpace(s)
	if len(s) < minEncodedLen || len(s) > maxEncodedLen {
		return fmt.Errorf("owner identity length %d outside [%d, %d]", len(s), minEncodedLen, maxEncodedLen)
	}

	payload, err := decodeBase58(s)
	if err != nil {
		return err
	}
	if len(payload) <= checksumLen {
		return fmt.Errorf("owner identity too short after decoding")
	}

	body := payload[:len(payload)-checksumLen]
	checksum := payload[len(payload)-checksumLen:]

	first := sha256.Sum256(body)
	second := sha256.Sum256(first[:])
	if !bytes.Equal(checksum, second[:checksumLen]) {
		return fmt.Errorf("owner identity checksum mismatch")
	}
	return nil
}

func decodeBase58(s string) ([]byte, error) {
	value := new(big.Int)
	radix := big.NewInt(58)
	for i := 0; i < len(s); i++ {
		idx, ok := base58Index[s[i]]
		if !ok {
			return nil, fmt.Errorf("invalid base58 character %q at position %d", s[i], i)
		}
		value.Mul(value, radix)
		value.Add(value, big.NewInt(idx))
	}

	// Leading '1' characters encode leading zero bytes.
	zeros := 0
	for zeros < len(s) && s[zeros] == '1' {
		zeros++
	}

	decoded := value.Bytes()
	out := make([]byte, zeros+len(decoded))
	copy(out[zeros:], decoded)
	return out, nil
}
