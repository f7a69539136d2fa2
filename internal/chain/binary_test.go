package chain

import "testing"

func TestReadU64LE(t *testing.T) {
	b := []byte{0x40, 0x42, 0x0f, 0, 0, 0, 0, 0, 0xff}
	v, ok := ReadU64LE(b)
	if !ok {
		t.Fatal("expected ok")
	}
	if v != 1_000_000 {
		t.Errorf("got %d, want 1000000", v)
	}
}

func TestReadU64LEShort(t *testing.T) {
	_, ok := ReadU64LE([]byte{1, 2, 3})
	if ok {
		t.Error("expected not ok for short input")
	}
}

func TestReadU32LE(t *testing.T) {
	b := []byte{0x01, 0x00, 0x00, 0x00}
	v, ok := ReadU32LE(b)
	if !ok || v != 1 {
		t.Errorf("got %d,%v want 1,true", v, ok)
	}
}

func TestReadU32LEShort(t *testing.T) {
	_, ok := ReadU32LE([]byte{1, 2})
	if ok {
		t.Error("expected not ok for short input")
	}
}

// P5: discriminator("buy") != discriminator("sell"); both exactly 8 bytes.
func TestAnchorDiscriminatorDistinct(t *testing.T) {
	buy := AnchorDiscriminator("buy")
	sell := AnchorDiscriminator("sell")
	if buy == sell {
		t.Fatal("buy and sell discriminators must differ")
	}
	if len(buy) != 8 || len(sell) != 8 {
		t.Fatal("discriminators must be exactly 8 bytes")
	}
}

func TestAnchorDiscriminatorDeterministic(t *testing.T) {
	a := AnchorDiscriminator("buy")
	b := AnchorDiscriminator("buy")
	if a != b {
		t.Error("discriminator must be deterministic for the same name")
	}
}
