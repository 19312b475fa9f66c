// Package chain provides the shared call-context types contracts execute
// against: block context, expirations, coins, and address validation.
//
// A Context is read-only and identical for every operation within one call.
// Block height and time are used exclusively for expiry comparisons.
package chain

import (
	"time"

	"github.com/louisbranch/menagerie/internal/storage"
)

// Context carries the block context and the transactional state handle for
// one contract call.
type Context struct {
	// Height is the current block height.
	Height uint64
	// Time is the current block time.
	Time time.Time
	// TxIndex is the position of the transaction within the block.
	TxIndex uint32

	state storage.KV
}

// NewContext builds a call context. The runtime constructs one per call;
// tests may construct them directly.
func NewContext(state storage.KV, height uint64, blockTime time.Time, txIndex uint32) Context {
	return Context{
		Height:  height,
		Time:    blockTime,
		TxIndex: txIndex,
		state:   state,
	}
}

// State returns the transactional state handle for this call.
func (c Context) State() storage.KV {
	return c.state
}
