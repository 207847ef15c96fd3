package store

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pkt-cash/pktd/btcutil/er"
	"github.com/pkt-cash/pktd/chaincfg/chainhash"

	"github.com/pkt-cash/lightwallet-sync/engine"
)

// SqliteStore persists engine progress in a single key/value table:
//
//	state(key TEXT PRIMARY KEY, value TEXT NOT NULL)
//
// Values are stored as plain decimal (heights) or hex (hashes) strings so
// the table is readable with the sqlite3 CLI.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (creating if necessary) a sqlite database at path
// and ensures its schema exists. Pass ":memory:" for a throwaway store.
func NewSqliteStore(path string) (*SqliteStore, er.R) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, er.E(err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS state (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, er.E(err)
	}
	return &SqliteStore{db: db}, nil
}

// Close releases the underlying sqlite connection.
func (s *SqliteStore) Close() er.R {
	if err := s.db.Close(); err != nil {
		return er.E(err)
	}
	return nil
}

func (s *SqliteStore) kvGet(key string) (string, bool, er.R) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, er.E(err)
	}
	return value, true, nil
}

func (s *SqliteStore) kvSet(key, value string) er.R {
	_, err := s.db.Exec(`
		INSERT INTO state(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return er.E(err)
	}
	return nil
}

func (s *SqliteStore) LoadCfTip() (*engine.CfTip, er.R) {
	heightS, heightOK, err := s.kvGet("cf_tip_height")
	if err != nil {
		return nil, err
	}
	hashS, hashOK, err := s.kvGet("cf_tip_hash")
	if err != nil {
		return nil, err
	}
	if !heightOK || !hashOK {
		return nil, nil
	}

	height, errp := strconv.ParseUint(heightS, 10, 32)
	if errp != nil {
		return nil, er.E(errp)
	}
	hash, errh := chainhash.NewHashFromStr(hashS)
	if errh != nil {
		return nil, errh
	}
	return &engine.CfTip{Height: uint32(height), Hash: *hash}, nil
}

func (s *SqliteStore) SaveCfTip(height uint32, hash chainhash.Hash) er.R {
	tx, err := s.db.Begin()
	if err != nil {
		return er.E(err)
	}
	if _, err := tx.Exec(`
		INSERT INTO state(key, value) VALUES('cf_tip_height', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, fmt.Sprintf("%d", height)); err != nil {
		tx.Rollback()
		return er.E(err)
	}
	if _, err := tx.Exec(`
		INSERT INTO state(key, value) VALUES('cf_tip_hash', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, hash.String()); err != nil {
		tx.Rollback()
		return er.E(err)
	}
	if err := tx.Commit(); err != nil {
		return er.E(err)
	}
	return nil
}

func (s *SqliteStore) GetLastScanned() (uint32, er.R) {
	v, ok, err := s.kvGet("last_scanned")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	height, errp := strconv.ParseUint(v, 10, 32)
	if errp != nil {
		return 0, nil
	}
	return uint32(height), nil
}

func (s *SqliteStore) SetLastScanned(height uint32) er.R {
	return s.kvSet("last_scanned", fmt.Sprintf("%d", height))
}

func (s *SqliteStore) GetBirthHeight() (*uint32, er.R) {
	v, ok, err := s.kvGet("birth_height")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	height, errp := strconv.ParseUint(v, 10, 32)
	if errp != nil || height == 0 {
		return nil, nil
	}
	h := uint32(height)
	return &h, nil
}

func (s *SqliteStore) SetBirthHeight(height uint32) er.R {
	return s.kvSet("birth_height", fmt.Sprintf("%d", height))
}

var _ engine.Store = (*SqliteStore)(nil)
