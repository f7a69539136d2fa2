package chain

import (
	"crypto/sha256"
	"encoding/binary"
)

// ReadU64LE reads a little-endian uint64 from the front of b. It reports
// false when fewer than 8 bytes remain.
func ReadU64LE(b []byte) (uint64, bool) {
	if len(b) < 8 {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b[:8]), true
}

// ReadU32LE reads a little-endian uint32 from the front of b. It reports
// false when fewer than 4 bytes remain.
func ReadU32LE(b []byte) (uint32, bool) {
	if len(b) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b[:4]), true
}

// AnchorDiscriminator returns the first 8 bytes of SHA-256("global:"+name),
// the method-dispatch discriminator Anchor-framework programs prefix their
// instruction data with.
func AnchorDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var disc [8]byte
	copy(disc[:], sum[:8])
	return disc
}
