package engine

import "github.com/pkt-cash/pktd/btcutil/er"

// Err is the error type for the engine package.
var Err er.ErrorType = er.NewErrorType("engine.Err")

var (
	// ErrSource wraps a failure returned by FilterSource, HeaderSource
	// or WalletHooks.Watchlist.
	ErrSource = Err.CodeWithDetail("ErrSource",
		"filter or header source failed")

	// ErrStore wraps a failure returned by Store.
	ErrStore = Err.CodeWithDetail("ErrStore",
		"progress store failed")

	// ErrHook wraps a failure returned by WalletHooks.OnBlockMatch.
	ErrHook = Err.CodeWithDetail("ErrHook",
		"wallet hook failed")

	// ErrDecode is returned when a raw block could not be parsed.
	ErrDecode = Err.CodeWithDetail("ErrDecode",
		"block could not be decoded")
)
