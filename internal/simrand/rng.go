// Package simrand derives deterministic, independent random streams for the
// simulation scheduler and its subsystems.
//
// The derivation follows the seeded-generation pattern in the teacher's
// pkg/pcg/seed.go SeedManager: a context string is hashed with SHA-256 and
// the first eight bytes of the digest become the sub-stream's seed. Here the
// context is (subsystem name, tick index) rather than (content type, name),
// so that adding, removing, or reordering subsystems never perturbs any
// other subsystem's random stream.
package simrand

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// DeriveSeed computes a deterministic int64 seed from a master seed and an
// arbitrary context string. Equal inputs always produce equal output.
func DeriveSeed(masterSeed uint64, context string) int64 {
	h := sha256.New()
	fmt.Fprintf(h, "%d:%s", masterSeed, context)
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// NewMasterRNG creates the scheduler's own RNG directly from the world seed.
// It is used sparingly, for concerns that are not attributable to any one
// subsystem (e.g. worldgen-adjacent scenario fixtures).
func NewMasterRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed)))
}

// ForSubsystemTick derives the RNG stream for one subsystem at one tick
// index. Two runs with the same (masterSeed, subsystem, tick) always produce
// the same stream, regardless of what other subsystems are present.
func ForSubsystemTick(masterSeed uint64, subsystem string, tick uint64) *rand.Rand {
	seed := DeriveSeed(masterSeed, fmt.Sprintf("%s:%d", subsystem, tick))
	return rand.New(rand.NewSource(seed))
}

// ForContext derives a named sub-stream nested under an already-derived RNG's
// context, mirroring SeedManager.CreateSubRNG: draw one value from the
// parent to seed a hash, so phases within a subsystem tick stay independent
// of each other without becoming dependent on draw order elsewhere.
func ForContext(parent *rand.Rand, phase string) *rand.Rand {
	parentDraw := parent.Int63()
	seed := DeriveSeed(uint64(parentDraw), phase)
	return rand.New(rand.NewSource(seed))
}
