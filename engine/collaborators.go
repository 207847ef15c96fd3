package engine

import (
	"github.com/pkt-cash/pktd/btcutil/er"
	"github.com/pkt-cash/pktd/chaincfg/chainhash"
	"github.com/pkt-cash/pktd/wire"
)

// Store persists the engine's progress markers. Every setter's successful
// return implies the value survives a crash. The two fields that make up
// the cf-tip must be updated together; the other keys are independent.
//
// Store implementations do no network I/O and hold no secrets — they are
// progress-only persistence, and may be composed freely with the other
// three collaborator interfaces on a single backing struct.
type Store interface {
	// LoadCfTip returns the last durably persisted filter-header chain
	// tip, or nil if none has been saved yet.
	LoadCfTip() (*CfTip, er.R)

	// SaveCfTip atomically persists the filter-header chain tip.
	SaveCfTip(height uint32, hash chainhash.Hash) er.R

	// GetLastScanned returns the greatest height whose filter has been
	// checked against the watchlist, defaulting to 0.
	GetLastScanned() (uint32, er.R)

	// SetLastScanned persists the last-scanned height.
	SetLastScanned(height uint32) er.R

	// GetBirthHeight returns the oldest height worth scanning, if set.
	// Reserved: the engine never reads this value itself.
	GetBirthHeight() (*uint32, er.R)

	// SetBirthHeight persists the birth height.
	SetBirthHeight(height uint32) er.R
}

// CfTip is the durable (height, rolling-hash) pair for the filter-header
// chain, as last persisted by Store.SaveCfTip.
type CfTip struct {
	Height uint32
	Hash   chainhash.Hash
}

// HeaderSource answers height/hash queries against the block-header chain.
// The engine trusts this source completely; it does not discover or
// validate headers itself.
type HeaderSource interface {
	// TipHeight returns the best known block-header chain tip height.
	TipHeight() (uint32, er.R)

	// HashAtHeight returns the block hash at an exact height. Must
	// answer for every height in [1, TipHeight()].
	HashAtHeight(height uint32) (chainhash.Hash, er.R)
}

// CFHeadersBatch is a contiguous run of rolling filter-header digests
// starting at StartHeight; element i corresponds to height
// StartHeight+i.
type CFHeadersBatch struct {
	StartHeight uint32
	Headers     []chainhash.Hash
}

// FilterSource fetches compact-filter sync data from the network. It may
// legally return fewer headers than requested from GetCFHeaders; the
// engine simply re-enters its catch-up loop on the next call.
type FilterSource interface {
	// GetCFHeaders fetches a batch of rolling cfheaders starting at
	// startHeight and ending at the block stopHash.
	GetCFHeaders(startHeight uint32, stopHash chainhash.Hash) (CFHeadersBatch, er.R)

	// GetCFilter fetches the raw compact filter bytes for a block.
	GetCFilter(block chainhash.Hash) ([]byte, er.R)

	// GetBlock fetches the consensus-serialized bytes of a block.
	GetBlock(block chainhash.Hash) ([]byte, er.R)
}

// WalletHooks is the wallet's side of the engine contract: it supplies the
// watchlist and receives match notifications.
type WalletHooks interface {
	// Watchlist returns the output scripts the wallet wants matched
	// against compact filters. Called once per RunToTip, at the start
	// of the filter-scan phase.
	Watchlist() ([][]byte, er.R)

	// OnBlockMatch is invoked once per height whose filter matched the
	// watchlist, with the block's transactions in on-chain order.
	OnBlockMatch(height uint32, block chainhash.Hash, txs []*wire.MsgTx) er.R
}
