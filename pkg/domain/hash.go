package domain

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Hash is an opaque digest supplied by clients. It is compared byte-wise
// and travels as lowercase hex in JSON.
type Hash []byte

func (h Hash) IsEmpty() bool { return len(h) == 0 }

func (h Hash) Equal(other Hash) bool { return bytes.Equal(h, other) }

func (h Hash) String() string { return hex.EncodeToString(h) }

// Clone returns a copy that does not alias h.
func (h Hash) Clone() Hash {
	if h == nil {
		return nil
	}
	return bytes.Clone(h)
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(h)), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	decoded, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("hash must be hex encoded: %w", err)
	}
	*h = decoded
	return nil
}
