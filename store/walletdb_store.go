// Package store provides reference Store implementations for the engine
// package: one backed by walletdb (the teacher's bucketed KV abstraction)
// and one backed by sqlite.
package store

import (
	"encoding/binary"

	"github.com/pkt-cash/pktd/btcutil/er"
	"github.com/pkt-cash/pktd/chaincfg/chainhash"
	"github.com/pkt-cash/pktd/pktwallet/walletdb"

	"github.com/pkt-cash/lightwallet-sync/engine"
)

var progressBucket = []byte("sync-progress")

var (
	keyCfTipHeight = []byte("cf_tip_height")
	keyCfTipHash   = []byte("cf_tip_hash")
	keyLastScanned = []byte("last_scanned")
	keyBirthHeight = []byte("birth_height")
)

// WalletDBStore persists engine progress in a single top-level bucket of a
// walletdb.DB, one key per progress marker. It is safe for concurrent use;
// every method runs in its own transaction.
type WalletDBStore struct {
	db walletdb.DB
}

// NewWalletDBStore wires a WalletDBStore to db, creating the progress
// bucket if it does not already exist.
func NewWalletDBStore(db walletdb.DB) (*WalletDBStore, er.R) {
	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) er.R {
		_, err := tx.CreateTopLevelBucket(progressBucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &WalletDBStore{db: db}, nil
}

func (s *WalletDBStore) LoadCfTip() (*engine.CfTip, er.R) {
	var tip *engine.CfTip
	err := walletdb.View(s.db, func(tx walletdb.ReadTx) er.R {
		bkt := tx.ReadBucket(progressBucket)
		if bkt == nil {
			return nil
		}
		heightB := bkt.Get(keyCfTipHeight)
		hashB := bkt.Get(keyCfTipHash)
		if heightB == nil || hashB == nil {
			return nil
		}
		hash, err := chainhash.NewHash(hashB)
		if err != nil {
			return er.E(err)
		}
		tip = &engine.CfTip{
			Height: binary.BigEndian.Uint32(heightB),
			Hash:   *hash,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tip, nil
}

func (s *WalletDBStore) SaveCfTip(height uint32, hash chainhash.Hash) er.R {
	return walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) er.R {
		bkt, err := rootBucket(tx)
		if err != nil {
			return err
		}
		var heightB [4]byte
		binary.BigEndian.PutUint32(heightB[:], height)
		if err := bkt.Put(keyCfTipHeight, heightB[:]); err != nil {
			return err
		}
		return bkt.Put(keyCfTipHash, hash[:])
	})
}

func (s *WalletDBStore) GetLastScanned() (uint32, er.R) {
	var height uint32
	err := walletdb.View(s.db, func(tx walletdb.ReadTx) er.R {
		bkt := tx.ReadBucket(progressBucket)
		if bkt == nil {
			return nil
		}
		if v := bkt.Get(keyLastScanned); v != nil {
			height = binary.BigEndian.Uint32(v)
		}
		return nil
	})
	return height, err
}

func (s *WalletDBStore) SetLastScanned(height uint32) er.R {
	return walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) er.R {
		bkt, err := rootBucket(tx)
		if err != nil {
			return err
		}
		var heightB [4]byte
		binary.BigEndian.PutUint32(heightB[:], height)
		return bkt.Put(keyLastScanned, heightB[:])
	})
}

func (s *WalletDBStore) GetBirthHeight() (*uint32, er.R) {
	var height *uint32
	err := walletdb.View(s.db, func(tx walletdb.ReadTx) er.R {
		bkt := tx.ReadBucket(progressBucket)
		if bkt == nil {
			return nil
		}
		if v := bkt.Get(keyBirthHeight); v != nil {
			h := binary.BigEndian.Uint32(v)
			height = &h
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return height, nil
}

func (s *WalletDBStore) SetBirthHeight(height uint32) er.R {
	return walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) er.R {
		bkt, err := rootBucket(tx)
		if err != nil {
			return err
		}
		var heightB [4]byte
		binary.BigEndian.PutUint32(heightB[:], height)
		return bkt.Put(keyBirthHeight, heightB[:])
	})
}

func rootBucket(tx walletdb.ReadWriteTx) (walletdb.ReadWriteBucket, er.R) {
	bkt := tx.ReadWriteBucket(progressBucket)
	if bkt != nil {
		return bkt, nil
	}
	return tx.CreateTopLevelBucket(progressBucket)
}

var _ engine.Store = (*WalletDBStore)(nil)
