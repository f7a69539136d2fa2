package dlmm

import (
	"testing"

	"github.com/solidx/indexer/internal/chain"
)

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func TestV1Swap(t *testing.T) {
	data := append([]byte{discSwap}, le64(1_000_000)...)
	data = append(data, le64(500_000)...)

	block := &chain.Block{
		Transactions: []chain.Transaction{
			{
				AccountKeys: []chain.Pubkey{"trader", "pool"},
				Instructions: []chain.Instruction{
					{ProgramID: ProgramID, AccountIndices: []uint8{0, 1}, Data: data},
				},
			},
		},
	}
	p := New()
	got := p.Decode(block)
	if len(got) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(got))
	}
	tr := got[0]
	if tr.Mint != "pool" || tr.Trader != "trader" || tr.TokenAmount != 500_000 || tr.SolAmount != 1_000_000 {
		t.Errorf("unexpected trade: %+v", tr)
	}
}

func TestV2SwapWithBinTail(t *testing.T) {
	data := append([]byte{discSwapV2}, le64(2_000_000)...)
	data = append(data, le64(1_000_000)...)
	data = append(data, le32(2)...)   // bin_count = 2
	data = append(data, le32(100)...) // bin id
	data = append(data, le32(101)...) // bin id

	block := &chain.Block{
		Transactions: []chain.Transaction{
			{
				AccountKeys: []chain.Pubkey{"trader", "pool"},
				Instructions: []chain.Instruction{
					{ProgramID: ProgramID, AccountIndices: []uint8{0, 1}, Data: data},
				},
			},
		},
	}
	p := New()
	got := p.Decode(block)
	if len(got) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(got))
	}
	if got[0].TokenAmount != 1_000_000 {
		t.Errorf("unexpected token amount: %+v", got[0])
	}
}

func TestV2InferredByAccountCount(t *testing.T) {
	data := append([]byte{discSwap}, le64(1)...)
	data = append(data, le64(1)...)

	accts := make([]uint8, 9)
	keys := make([]chain.Pubkey, 9)
	for i := range accts {
		accts[i] = uint8(i)
		keys[i] = chain.Pubkey("k" + string(rune('a'+i)))
	}
	keys[0] = "trader"
	keys[1] = "pool"

	block := &chain.Block{
		Transactions: []chain.Transaction{
			{
				AccountKeys: keys,
				Instructions: []chain.Instruction{
					{ProgramID: ProgramID, AccountIndices: accts, Data: data},
				},
			},
		},
	}
	p := New()
	got := p.Decode(block)
	if len(got) != 1 {
		t.Fatalf("expected 1 trade via account-count v2 inference, got %d", len(got))
	}
	if !isV2(block.Transactions[0].Instructions[0], discSwap) {
		t.Error("expected 9 accounts with the v1 discriminator to be inferred as v2")
	}
}

func TestBinCountClamped(t *testing.T) {
	data := append([]byte{discSwapV2}, le64(1)...)
	data = append(data, le64(1)...)
	data = append(data, le32(1000)...) // absurd bin_count, should clamp to 10

	block := &chain.Block{
		Transactions: []chain.Transaction{
			{
				AccountKeys: []chain.Pubkey{"trader", "pool"},
				Instructions: []chain.Instruction{
					{ProgramID: ProgramID, AccountIndices: []uint8{0, 1}, Data: data},
				},
			},
		},
	}
	p := New()
	got := p.Decode(block)
	if len(got) != 1 {
		t.Fatalf("expected the trade to still decode despite short bin tail, got %d", len(got))
	}
}
