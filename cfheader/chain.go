// Package cfheader implements the rolling compact-filter-header chain: a
// small, pure state machine that folds a batch of per-block filter digests
// into a cumulative hash and verifies the result against optional
// checkpoints.
package cfheader

import (
	"github.com/pkt-cash/pktd/btcutil/er"
	"github.com/pkt-cash/pktd/chaincfg/chainhash"
)

// Err is the error type for the cfheader package.
var Err er.ErrorType = er.NewErrorType("cfheader.Err")

var (
	// ErrBatchStartMismatch is returned when a batch does not begin at
	// tip height + 1.
	ErrBatchStartMismatch = Err.CodeWithDetail("ErrBatchStartMismatch",
		"cfheaders batch does not start at tip height + 1")

	// ErrCheckpointMismatch is returned when the rolling hash computed at
	// a checkpointed height differs from the pinned value.
	ErrCheckpointMismatch = Err.CodeWithDetail("ErrCheckpointMismatch",
		"computed rolling filter header does not match checkpoint")
)

// Checkpoint pins a trusted rolling filter-header hash at a given height.
type Checkpoint struct {
	Height uint32
	Hash   chainhash.Hash
}

// Chain is the rolling filter-header chain state: a tip height and the
// rolling hash of every filter digest folded in up to that height.
//
// H_n = HASH256(H_{n-1} || F_n), H_0 = 0...0
type Chain struct {
	TipHeight uint32
	TipHash   chainhash.Hash
}

// New initializes a Chain from a previously persisted (height, hash) pair.
// A nil prev, or one with height 0, starts the chain fresh at height 0 with
// the all-zero rolling hash.
func New(prev *Checkpoint) *Chain {
	if prev != nil && prev.Height > 0 {
		return &Chain{TipHeight: prev.Height, TipHash: prev.Hash}
	}
	return &Chain{}
}

// ApplyBatch folds a contiguous run of per-block filter digests into the
// chain starting at startHeight, verifying any checkpoint that falls inside
// the batch along the way.
//
// An empty headers slice is a no-op regardless of startHeight. On a
// checkpoint mismatch or a non-contiguous start, the chain's state reflects
// whatever prefix of the batch was folded successfully before the error —
// callers must not persist the in-memory chain after an error return.
func (c *Chain) ApplyBatch(startHeight uint32, headers []chainhash.Hash, checkpoints []Checkpoint) er.R {
	if len(headers) == 0 {
		return nil
	}

	expected := c.TipHeight + 1
	if expected < c.TipHeight {
		// saturating add: tip height was already at u32::MAX.
		expected = c.TipHeight
	}
	if startHeight != expected {
		return ErrBatchStartMismatch.New(
			er.Errorf("got %d, expected %d", startHeight, expected).Message(), nil)
	}

	rolling := c.TipHash
	for i, fh := range headers {
		h := startHeight + uint32(i)

		cur := rollingHash(rolling, fh)

		if ckpt := findCheckpoint(checkpoints, h); ckpt != nil && cur != ckpt.Hash {
			return ErrCheckpointMismatch.New(er.Errorf("height %d", h).Message(), nil)
		}

		rolling = cur
		c.TipHeight = h
		c.TipHash = rolling
	}

	return nil
}

// rollingHash computes HASH256(prev || next), the BIP-157 cfheader
// recurrence.
func rollingHash(prev chainhash.Hash, next chainhash.Hash) chainhash.Hash {
	var buf [64]byte
	copy(buf[:32], prev[:])
	copy(buf[32:], next[:])
	return chainhash.DoubleHashH(buf[:])
}

func findCheckpoint(checkpoints []Checkpoint, height uint32) *Checkpoint {
	for i := range checkpoints {
		if checkpoints[i].Height == height {
			return &checkpoints[i]
		}
	}
	return nil
}
