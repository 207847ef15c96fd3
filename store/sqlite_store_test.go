package store

import (
	"testing"

	"github.com/pkt-cash/pktd/chaincfg/chainhash"
)

func TestSqliteStoreRoundTrip(t *testing.T) {
	s, err := NewSqliteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSqliteStore: %v", err)
	}
	defer s.Close()

	if tip, err := s.LoadCfTip(); err != nil || tip != nil {
		t.Fatalf("expected nil cf_tip before first save, got %+v, err %v", tip, err)
	}
	if h, err := s.GetLastScanned(); err != nil || h != 0 {
		t.Fatalf("expected last_scanned 0, got %d, err %v", h, err)
	}
	if b, err := s.GetBirthHeight(); err != nil || b != nil {
		t.Fatalf("expected nil birth_height, got %v, err %v", b, err)
	}

	hash := chainhash.Hash{0x01, 0x02, 0x03}
	if err := s.SaveCfTip(42, hash); err != nil {
		t.Fatalf("SaveCfTip: %v", err)
	}
	tip, err := s.LoadCfTip()
	if err != nil {
		t.Fatalf("LoadCfTip: %v", err)
	}
	if tip == nil || tip.Height != 42 || tip.Hash != hash {
		t.Fatalf("unexpected cf_tip: %+v", tip)
	}

	if err := s.SetLastScanned(7); err != nil {
		t.Fatalf("SetLastScanned: %v", err)
	}
	if h, err := s.GetLastScanned(); err != nil || h != 7 {
		t.Fatalf("expected last_scanned 7, got %d, err %v", h, err)
	}

	if err := s.SetBirthHeight(100); err != nil {
		t.Fatalf("SetBirthHeight: %v", err)
	}
	if b, err := s.GetBirthHeight(); err != nil || b == nil || *b != 100 {
		t.Fatalf("unexpected birth_height: %v, err %v", b, err)
	}
}

func TestSqliteStoreBirthHeightZeroIsUnset(t *testing.T) {
	s, err := NewSqliteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSqliteStore: %v", err)
	}
	defer s.Close()

	if err := s.SetBirthHeight(0); err != nil {
		t.Fatalf("SetBirthHeight: %v", err)
	}
	b, err := s.GetBirthHeight()
	if err != nil {
		t.Fatalf("GetBirthHeight: %v", err)
	}
	if b != nil {
		t.Fatalf("expected birth_height 0 to read back as unset, got %v", *b)
	}
}
