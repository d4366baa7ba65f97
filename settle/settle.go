// Package settle implements the acceptance check that closes out a
// run: the engine's output is content-hashed and compared against a
// fixed target, and an exact match releases the reward.
package settle

import (
	"crypto/sha256"
	"fmt"
)

// DefaultTarget is the hash the output must reproduce: SHA-256 of the
// two-byte sequence "hi" (0x68, 0x69).
var DefaultTarget = sha256.Sum256([]byte("hi"))

// RewardFunc releases the reward to an actor. Custody and transfer
// mechanics live with the caller, not here.
type RewardFunc func(actor string) error

// Checker compares execution output against a target content hash.
// There is no partial credit: anything but an exact hash match,
// including empty output, fails.
type Checker struct {
	target [32]byte
	reward RewardFunc
}

// New creates a Checker for the given target hash. reward may be nil,
// in which case acceptance is recorded but nothing is released.
func New(target [32]byte, reward RewardFunc) *Checker {
	return &Checker{target: target, reward: reward}
}

// Target returns the target content hash.
func (c *Checker) Target() [32]byte {
	return c.target
}

// Accepts reports whether output hashes to the target.
func (c *Checker) Accepts(output []byte) bool {
	return sha256.Sum256(output) == c.target
}

// Settle runs the acceptance check and, on a match, releases the
// reward to the actor. The bool reports acceptance; a non-nil error
// means the output was accepted but the release failed.
func (c *Checker) Settle(actor string, output []byte) (bool, error) {
	if !c.Accepts(output) {
		return false, nil
	}
	if c.reward != nil {
		if err := c.reward(actor); err != nil {
			return true, fmt.Errorf("settle: release reward: %w", err)
		}
	}
	return true, nil
}
