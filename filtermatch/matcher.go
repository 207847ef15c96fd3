// Package filtermatch implements the stateless predicate that tests whether
// any element of a wallet watchlist is contained in a block's compact
// (Golomb-Rice coded) filter.
package filtermatch

import (
	"github.com/pkt-cash/pktd/btcutil"
	"github.com/pkt-cash/pktd/btcutil/er"
	"github.com/pkt-cash/pktd/btcutil/gcs"
	"github.com/pkt-cash/pktd/btcutil/gcs/builder"
	"github.com/pkt-cash/pktd/chaincfg/chainhash"
	"github.com/pkt-cash/pktd/txscript"
)

// Err is the error type for the filtermatch package.
var Err er.ErrorType = er.NewErrorType("filtermatch.Err")

// ErrMalformedFilter is returned when raw_filter cannot be decoded as a
// valid Golomb-Rice compact filter.
var ErrMalformedFilter = Err.CodeWithDetail("ErrMalformedFilter",
	"compact filter content is malformed")

// Matches reports whether any element of watch is a member of the compact
// filter raw_filter belonging to the block blockHash.
//
// An empty raw_filter, or an empty watch list, always yields false without
// touching the decoder. A true result does not guarantee the block is
// relevant — a false positive is possible by design; a true result always
// warrants fetching the full block to confirm.
func Matches(blockHash chainhash.Hash, rawFilter []byte, watch [][]byte) (bool, er.R) {
	if len(rawFilter) == 0 || len(watch) == 0 {
		return false, nil
	}

	filter, err := gcs.FromNBytes(builder.DefaultP, builder.DefaultM, rawFilter)
	if err != nil {
		return false, ErrMalformedFilter.New("", err)
	}

	key := builder.DeriveKey(&blockHash)

	hit, err := filter.MatchAny(key, watch)
	if err != nil {
		return false, ErrMalformedFilter.New("", err)
	}
	return hit, nil
}

// MatchesAnyAddress is sugar over Matches for callers holding decoded
// addresses rather than raw scripts.
func MatchesAnyAddress(blockHash chainhash.Hash, rawFilter []byte, addrs []btcutil.Address) (bool, er.R) {
	scripts := make([][]byte, 0, len(addrs))
	for _, a := range addrs {
		script, err := txscript.PayToAddrScript(a)
		if err != nil {
			return false, err
		}
		scripts = append(scripts, script)
	}
	return Matches(blockHash, rawFilter, scripts)
}
