// Package digest implements content addressing: every stored object is
// named by the lowercase hex SHA-256 digest of its bytes.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// KeyLength is the length of a hex-encoded object key.
const KeyLength = sha256.Size * 2

// Compute returns the lowercase hex SHA-256 digest of b.
func Compute(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// ValidateKey checks that s is exactly 64 lowercase hex characters
// decoding to 32 raw bytes.
func ValidateKey(s string) error {
	if len(s) != KeyLength {
		return fmt.Errorf("invalid key length %d, want %d", len(s), KeyLength)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	if len(raw) != sha256.Size {
		return fmt.Errorf("invalid key: decodes to %d bytes, want %d", len(raw), sha256.Size)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'F' {
			return fmt.Errorf("invalid key: uppercase hex at position %d", i)
		}
	}
	return nil
}

// Verify recomputes the digest of b and compares it to claimed.
func Verify(b []byte, claimed string) error {
	actual := Compute(b)
	if actual != claimed {
		return fmt.Errorf("digest mismatch: claimed %s, computed %s", claimed, actual)
	}
	return nil
}
