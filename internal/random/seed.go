// Package random draws high-entropy seeds for the loot allocator's
// deterministic pseudo-random generator.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed reads eight bytes of OS entropy and packs them into an int64.
// The loot RNG is seeded once per terminal transition.
func NewSeed() (int64, error) {
	var raw [8]byte
	if _, err := crand.Read(raw[:]); err != nil {
		return 0, fmt.Errorf("read seed entropy: %w", err)
	}
	return int64(binary.BigEndian.Uint64(raw[:])), nil
}
