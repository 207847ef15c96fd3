package filtermatch

import (
	"testing"
	"time"

	"github.com/pkt-cash/pktd/btcutil/gcs/builder"
	"github.com/pkt-cash/pktd/chaincfg/chainhash"
	"github.com/pkt-cash/pktd/wire"
)

// blockWithOutput builds a minimal one-transaction block whose single output
// pays to outScript, mirroring the teacher's genesis-filter construction in
// headerfs.NewFilterHeaderStore (builder.BuildBasicFilter(block, nil)).
func blockWithOutput(t *testing.T, outScript []byte) *wire.MsgBlock {
	t.Helper()

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
		Sequence:         0xffffffff,
	})
	tx.AddTxOut(&wire.TxOut{Value: 50_000, PkScript: outScript})

	block := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:    2,
			Timestamp:  time.Unix(0, 0),
			Bits:       0x207fffff,
			MerkleRoot: chainhash.Hash{},
		},
	}
	if err := block.AddTransaction(tx); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	return block
}

func rawFilterFor(t *testing.T, block *wire.MsgBlock) []byte {
	t.Helper()
	f, err := builder.BuildBasicFilter(block, nil)
	if err != nil {
		t.Fatalf("BuildBasicFilter: %v", err)
	}
	raw, err := f.NBytes()
	if err != nil {
		t.Fatalf("NBytes: %v", err)
	}
	return raw
}

func TestMatchesEmptyFilterIsFalse(t *testing.T) {
	hit, err := Matches(chainhash.Hash{}, nil, [][]byte{{0x01}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Fatalf("empty filter must never match")
	}
}

func TestMatchesEmptyWatchIsFalse(t *testing.T) {
	script := []byte{0x00, 0x14}
	block := blockWithOutput(t, script)
	raw := rawFilterFor(t, block)

	hit, err := Matches(block.BlockHash(), raw, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Fatalf("empty watchlist must never match")
	}
}

func TestMatchesFindsWatchedScript(t *testing.T) {
	watchScript := []byte{0x00, 0x14, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	block := blockWithOutput(t, watchScript)
	raw := rawFilterFor(t, block)

	hit, err := Matches(block.BlockHash(), raw, [][]byte{watchScript})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hit {
		t.Fatalf("expected a match for the watched output script")
	}
}

func TestMatchesMissesUnrelatedScript(t *testing.T) {
	watchScript := []byte{0x00, 0x14, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	block := blockWithOutput(t, watchScript)
	raw := rawFilterFor(t, block)

	other := []byte{0x00, 0x14, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9}
	hit, err := Matches(block.BlockHash(), raw, [][]byte{other})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Fatalf("did not expect a match for an unrelated script")
	}
}

func TestMatchesMalformedFilterErrors(t *testing.T) {
	_, err := Matches(chainhash.Hash{}, []byte{0xff, 0xff, 0xff}, [][]byte{{0x01}})
	if !ErrMalformedFilter.Is(err) {
		t.Fatalf("expected ErrMalformedFilter, got %v", err)
	}
}
