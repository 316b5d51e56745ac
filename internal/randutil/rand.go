package randutil

import (
	"crypto/rand"
	"encoding/binary"
	randv2 "math/rand/v2"
)

const goldenRatio64 uint64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from the provided int64.
// It centralises how the two 64-bit PCG seeds are derived so that every
// call site with the same seed gets the same shuffle sequence.
func New(seed int64) *randv2.Rand {
	u := uint64(seed)
	return randv2.New(randv2.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewSystem returns a *rand.Rand seeded from the OS entropy source, for
// production shuffles where reproducibility is not wanted.
func NewSystem() *randv2.Rand {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// a fixed seed rather than crashing the server.
		fixed := goldenRatio64
		return New(int64(fixed))
	}
	return New(int64(binary.LittleEndian.Uint64(buf[:])))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
