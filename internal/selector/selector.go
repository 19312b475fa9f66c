// Package selector implements the deterministic weighted pick used to
// resolve lootbox openings. The draw is a pure function of publicly
// observable call inputs, so every validating replica resolves the same
// lootbox to the same member. It is replayable by construction and must
// never be treated as a security-grade random source.
package selector

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Bound is the draw's upper bound, matching the required lootbox weight sum.
const Bound = 100

// Draw produces a value in [1, Bound] from the call inputs. The seed string
// is hashed with SHA-256, the first 16 bytes become the little-endian state
// of a xoshiro128++ generator, and a single output step is taken.
func Draw(sender string, height uint64, txIndex uint32, listLen int) uint32 {
	seed := fmt.Sprintf("%s%d%d%d", sender, height, listLen, txIndex)
	digest := sha256.Sum256([]byte(seed))

	var state [4]uint32
	for i := range state {
		state[i] = binary.LittleEndian.Uint32(digest[i*4:])
	}
	return next(&state)%Bound + 1
}

// Pick returns the index selected by a drawn value over the weight list:
// the first index whose cumulative weight reaches the draw. Weights are
// validated at catalog-write time to be positive and sum to Bound, so a
// draw in [1, Bound] always lands on a valid index.
func Pick(weights []uint32, drawn uint32) int {
	position := 0
	for _, weight := range weights {
		if drawn <= weight {
			break
		}
		drawn -= weight
		position++
	}
	return position
}

// next is one xoshiro128++ step: the output is rotl(s0+s3, 7) + s0 and the
// state advances through the fixed shift/rotate permutation.
func next(s *[4]uint32) uint32 {
	result := bits.RotateLeft32(s[0]+s[3], 7) + s[0]

	t := s[1] << 9

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]

	s[2] ^= t

	s[3] = bits.RotateLeft32(s[3], 11)

	return result
}
