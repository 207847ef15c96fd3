// Package blockheaders provides a walletdb-backed height<->hash index for
// the block-header chain, adapted from the teacher's flat-file header
// index down to the columns the engine actually needs: it answers
// HashAtHeight and TipHeight and nothing else. Header bytes, reorg
// rollback and connectivity checks live in the host's own header sync and
// are out of scope here.
package blockheaders

import (
	"encoding/binary"
	"sort"

	"github.com/pkt-cash/pktd/btcutil/er"
	"github.com/pkt-cash/pktd/chaincfg/chainhash"
	"github.com/pkt-cash/pktd/pktlog/log"
	"github.com/pkt-cash/pktd/pktwallet/walletdb"

	"github.com/pkt-cash/lightwallet-sync/engine"
)

var rootBucketName = []byte("block-hash-index")

var (
	tipKey         = []byte("tip")
	byHeightBucket = []byte("byheight")
)

var Err er.ErrorType = er.NewErrorType("blockheaders.Err")

var (
	ErrHeightNotFound = Err.CodeWithDetail("ErrHeightNotFound",
		"target height not found in index")
	ErrOutOfOrder = Err.CodeWithDetail("ErrOutOfOrder",
		"header batch does not extend the current tip contiguously")
)

// Entry is a single (height, hash) pair to extend the index with.
type Entry struct {
	Height uint32
	Hash   chainhash.Hash
}

// BlockHashIndex is a walletdb-backed engine.HeaderSource: a contiguous
// height-to-hash map for the block-header chain, with the current tip
// tracked alongside it.
type BlockHashIndex struct {
	db walletdb.DB
}

// New wires a BlockHashIndex to db, creating its bucket if necessary.
func New(db walletdb.DB) (*BlockHashIndex, er.R) {
	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) er.R {
		_, err := tx.CreateTopLevelBucket(rootBucketName)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &BlockHashIndex{db: db}, nil
}

func (idx *BlockHashIndex) TipHeight() (uint32, er.R) {
	var height uint32
	err := walletdb.View(idx.db, func(tx walletdb.ReadTx) er.R {
		root := tx.ReadBucket(rootBucketName)
		if root == nil {
			return nil
		}
		v := root.Get(tipKey)
		if v == nil {
			return nil
		}
		height = binary.BigEndian.Uint32(v)
		return nil
	})
	return height, err
}

func (idx *BlockHashIndex) HashAtHeight(height uint32) (chainhash.Hash, er.R) {
	var hash chainhash.Hash
	err := walletdb.View(idx.db, func(tx walletdb.ReadTx) er.R {
		root := tx.ReadBucket(rootBucketName)
		if root == nil {
			return ErrHeightNotFound.New("", er.Errorf("height %d", height))
		}
		byHeight := root.NestedReadBucket(byHeightBucket)
		if byHeight == nil {
			return ErrHeightNotFound.New("", er.Errorf("height %d", height))
		}
		v := byHeight.Get(heightBin(height))
		if v == nil {
			return ErrHeightNotFound.New("", er.Errorf("height %d", height))
		}
		h, err := chainhash.NewHash(v)
		if err != nil {
			return err
		}
		hash = *h
		return nil
	})
	return hash, err
}

// Extend appends a contiguous run of (height, hash) entries to the index,
// advancing the tip. Entries may arrive out of order within the batch but
// must, once sorted, pick up exactly where the current tip leaves off.
func (idx *BlockHashIndex) Extend(entries []Entry) er.R {
	if len(entries) == 0 {
		return nil
	}
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Height < sorted[j].Height })

	return walletdb.Update(idx.db, func(tx walletdb.ReadWriteTx) er.R {
		root := tx.ReadWriteBucket(rootBucketName)
		if root == nil {
			r, err := tx.CreateTopLevelBucket(rootBucketName)
			if err != nil {
				return err
			}
			root = r
		}
		byHeight, err := root.CreateBucketIfNotExists(byHeightBucket)
		if err != nil {
			return err
		}

		tipHeight := uint32(0)
		haveTip := root.Get(tipKey) != nil
		if haveTip {
			tipHeight = binary.BigEndian.Uint32(root.Get(tipKey))
		}

		for _, e := range sorted {
			if haveTip && e.Height != tipHeight+1 {
				log.Warnf("block hash index: dropping out-of-order entry at height %d, tip is %d",
					e.Height, tipHeight)
				return ErrOutOfOrder.New(
					er.Errorf("height %d does not extend tip %d", e.Height, tipHeight).Message(), nil)
			}
			if !haveTip && e.Height != 0 {
				return ErrOutOfOrder.New(
					er.Errorf("first entry must be height 0, got %d", e.Height).Message(), nil)
			}
			if err := byHeight.Put(heightBin(e.Height), e.Hash[:]); err != nil {
				return err
			}
			tipHeight = e.Height
			haveTip = true
		}

		var tipB [4]byte
		binary.BigEndian.PutUint32(tipB[:], tipHeight)
		return root.Put(tipKey, tipB[:])
	})
}

func heightBin(height uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], height)
	return b[:]
}

var _ engine.HeaderSource = (*BlockHashIndex)(nil)
