// Package engine implements the sync orchestrator: a two-phase state
// machine that drives the filter-header chain to the block-header tip,
// then scans per-block filters against a wallet watchlist, fetching and
// decoding full blocks on a hit.
package engine

import (
	"bytes"

	"github.com/pkt-cash/pktd/btcutil/er"
	"github.com/pkt-cash/pktd/pktlog/log"
	"github.com/pkt-cash/pktd/wire"

	"github.com/pkt-cash/lightwallet-sync/cfheader"
	"github.com/pkt-cash/lightwallet-sync/filtermatch"
)

// BatchSize is the default number of cfheaders the engine requests per
// catch-up window. Tuning constant, not a protocol limit.
const BatchSize = 2000

// Engine owns a CfHeaderChain instance and drives a full sync run by
// calling out to its four injected collaborators. It persists progress
// after every unit of work so a restart resumes without rework.
//
// Concurrent RunToTip calls on the same Engine are not supported; the host
// is expected to serialize runs.
type Engine struct {
	store   Store
	headers HeaderSource
	source  FilterSource
	hooks   WalletHooks

	checkpoints []cfheader.Checkpoint

	// batchSize overrides BatchSize; zero means use the default.
	batchSize uint32
}

// New creates an Engine wired to the given collaborators. The checkpoint
// list starts empty; use WithCheckpoints to install one before RunToTip.
func New(store Store, headers HeaderSource, source FilterSource, hooks WalletHooks) *Engine {
	return &Engine{
		store:   store,
		headers: headers,
		source:  source,
		hooks:   hooks,
	}
}

// WithCheckpoints installs a checkpoint list used for defense-in-depth
// verification of the filter-header chain. Checkpoints are immutable for
// the duration of a run; call this before RunToTip.
func (e *Engine) WithCheckpoints(checkpoints []cfheader.Checkpoint) *Engine {
	e.checkpoints = checkpoints
	return e
}

// WithBatchSize overrides the default cfheaders catch-up window. Exposed
// for tuning; the default of BatchSize is correct for ordinary use.
func (e *Engine) WithBatchSize(n uint32) *Engine {
	e.batchSize = n
	return e
}

func (e *Engine) batch() uint32 {
	if e.batchSize == 0 {
		return BatchSize
	}
	return e.batchSize
}

// RunToTip drives a single sync run from the persisted state to the
// current chain tip. It is idempotent across restarts: calling it twice
// with no chain progress in between performs no further collaborator
// mutation beyond the initial queries.
func (e *Engine) RunToTip() er.R {
	chain, err := e.catchUpFilterHeaders()
	if err != nil {
		return err
	}
	return e.scanFilters(chain)
}

// catchUpFilterHeaders drives Phase A: verify/advance the rolling
// filter-header chain to the block-header tip.
func (e *Engine) catchUpFilterHeaders() (*cfheader.Chain, er.R) {
	cfTip, err := e.store.LoadCfTip()
	if err != nil {
		return nil, ErrStore.New("load_cf_tip", err)
	}

	var prev *cfheader.Checkpoint
	if cfTip != nil {
		prev = &cfheader.Checkpoint{Height: cfTip.Height, Hash: cfTip.Hash}
	}
	chain := cfheader.New(prev)

	chainTip, err := e.headers.TipHeight()
	if err != nil {
		return nil, ErrSource.New("tip_height", err)
	}

	for chain.TipHeight < chainTip {
		next := chain.TipHeight + 1
		stopH := next + e.batch() - 1
		if stopH > chainTip {
			stopH = chainTip
		}

		stopHash, err := e.headers.HashAtHeight(stopH)
		if err != nil {
			return nil, ErrSource.New(er.Errorf("hash_at_height(%d)", stopH).Message(), err)
		}

		rawBatch, err := e.source.GetCFHeaders(next, stopHash)
		if err != nil {
			return nil, ErrSource.New(
				er.Errorf("get_cfheaders(start=%d, stop_h=%d)", next, stopH).Message(), err)
		}

		if err := chain.ApplyBatch(rawBatch.StartHeight, rawBatch.Headers, e.checkpoints); err != nil {
			log.Warnf("cfheaders batch @%d rejected: %v", rawBatch.StartHeight, err)
			return nil, err
		}

		if err := e.store.SaveCfTip(chain.TipHeight, chain.TipHash); err != nil {
			return nil, ErrStore.New("save_cf_tip", err)
		}
	}

	return chain, nil
}

// scanFilters drives Phase B: scan per-block filters from the last
// scanned height through the filter-header chain's tip, fetching and
// delivering blocks on a hit.
func (e *Engine) scanFilters(chain *cfheader.Chain) er.R {
	lastScanned, err := e.store.GetLastScanned()
	if err != nil {
		return ErrStore.New("get_last_scanned", err)
	}
	end := chain.TipHeight

	watch, err := e.hooks.Watchlist()
	if err != nil {
		return ErrSource.New("watchlist", err)
	}

	if len(watch) == 0 {
		// Nothing to match against; fast-forward so the next run
		// doesn't rescan while the wallet is still empty.
		if err := e.store.SetLastScanned(end); err != nil {
			return ErrStore.New("set_last_scanned", err)
		}
		return nil
	}

	for h := lastScanned + 1; h <= end; h++ {
		blockHash, err := e.headers.HashAtHeight(h)
		if err != nil {
			return ErrSource.New(er.Errorf("hash_at_height(%d)", h).Message(), err)
		}

		raw, err := e.source.GetCFilter(blockHash)
		if err != nil {
			return ErrSource.New(er.Errorf("get_cfilter(%s)", blockHash).Message(), err)
		}

		hit, err := filtermatch.Matches(blockHash, raw, watch)
		if err != nil {
			return er.Errorf("filter match @height %d: %v", h, err)
		}

		if hit {
			rawBlock, err := e.source.GetBlock(blockHash)
			if err != nil {
				return ErrSource.New(er.Errorf("get_block(%s)", blockHash).Message(), err)
			}

			txs, err := decodeTransactions(rawBlock)
			if err != nil {
				return ErrDecode.New(er.Errorf("block %s", blockHash).Message(), err)
			}

			if err := e.hooks.OnBlockMatch(h, blockHash, txs); err != nil {
				return ErrHook.New(er.Errorf("on_block_match @height %d", h).Message(), err)
			}
		}

		if err := e.store.SetLastScanned(h); err != nil {
			return ErrStore.New("set_last_scanned", err)
		}
	}

	return nil
}

func decodeTransactions(raw []byte) ([]*wire.MsgTx, er.R) {
	var msgBlock wire.MsgBlock
	if err := msgBlock.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return msgBlock.Transactions, nil
}
