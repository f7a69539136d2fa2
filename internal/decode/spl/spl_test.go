package spl

import (
	"testing"

	"github.com/solidx/indexer/internal/chain"
)

func le64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

// S1: SPL TransferChecked hit.
func TestTransferCheckedHit(t *testing.T) {
	block := &chain.Block{
		Slot: 100,
		Transactions: []chain.Transaction{
			{
				Signature:   "s1",
				TxIndex:     0,
				AccountKeys: []chain.Pubkey{"src_ata", "mint_X", "dst_ata", "owner"},
				Instructions: []chain.Instruction{
					{
						ProgramID:      ProgramID,
						AccountIndices: []uint8{0, 1, 2, 3},
						Data:           append([]byte{discTransferChecked}, append(le64(1_000_000), 6)...),
						IxIndex:        0,
					},
				},
			},
		},
	}
	p := New([]chain.Pubkey{"mint_X"})
	got := p.Decode(block)
	if len(got) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(got))
	}
	tr := got[0]
	if tr.Mint != "mint_X" || tr.Amount != 1_000_000 || tr.SourceATA != "src_ata" || tr.DestATA != "dst_ata" {
		t.Errorf("unexpected transfer: %+v", tr)
	}
	if tr.Decimals == nil || *tr.Decimals != 6 {
		t.Errorf("expected decimals=6, got %+v", tr.Decimals)
	}
}

// S2: SPL whitelist miss.
func TestTransferCheckedWhitelistMiss(t *testing.T) {
	block := &chain.Block{
		Slot: 100,
		Transactions: []chain.Transaction{
			{
				Signature:   "s1",
				TxIndex:     0,
				AccountKeys: []chain.Pubkey{"src_ata", "other_mint", "dst_ata", "owner"},
				Instructions: []chain.Instruction{
					{
						ProgramID:      ProgramID,
						AccountIndices: []uint8{0, 1, 2, 3},
						Data:           append([]byte{discTransferChecked}, append(le64(1_000_000), 6)...),
						IxIndex:        0,
					},
				},
			},
		},
	}
	p := New([]chain.Pubkey{"mint_X"})
	got := p.Decode(block)
	if len(got) != 0 {
		t.Fatalf("expected 0 transfers, got %d", len(got))
	}
}

func TestMintToChecked(t *testing.T) {
	block := &chain.Block{
		Slot: 200,
		Transactions: []chain.Transaction{
			{
				Signature:   "mint_sig",
				TxIndex:     1,
				AccountKeys: []chain.Pubkey{"test_mint", "dest_ata", "mint_authority"},
				Instructions: []chain.Instruction{
					{
						ProgramID:      ProgramID,
						AccountIndices: []uint8{0, 1, 2},
						Data:           append([]byte{discMintToChecked}, append(le64(10_000_000), 6)...),
						IxIndex:        0,
					},
				},
			},
		},
	}
	p := New([]chain.Pubkey{"test_mint"})
	got := p.Decode(block)
	if len(got) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(got))
	}
	tr := got[0]
	if tr.Amount != 10_000_000 || tr.SourceOwner != "system" || tr.DestOwner != "dest_ata" {
		t.Errorf("unexpected transfer: %+v", tr)
	}
}

func TestBurnChecked(t *testing.T) {
	block := &chain.Block{
		Slot: 300,
		Transactions: []chain.Transaction{
			{
				Signature:   "burn_sig",
				TxIndex:     2,
				AccountKeys: []chain.Pubkey{"source_ata", "test_mint", "owner"},
				Instructions: []chain.Instruction{
					{
						ProgramID:      ProgramID,
						AccountIndices: []uint8{0, 1, 2},
						Data:           append([]byte{discBurnChecked}, append(le64(500_000), 6)...),
						IxIndex:        0,
					},
				},
			},
		},
	}
	p := New([]chain.Pubkey{"test_mint"})
	got := p.Decode(block)
	if len(got) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(got))
	}
	tr := got[0]
	if tr.Amount != 500_000 || tr.SourceOwner != "source_ata" || tr.DestOwner != "burn" {
		t.Errorf("unexpected transfer: %+v", tr)
	}
}

func TestUncheckedTransferSkippedWithWhitelist(t *testing.T) {
	block := &chain.Block{
		Slot: 1,
		Transactions: []chain.Transaction{
			{
				Signature:   "s1",
				AccountKeys: []chain.Pubkey{"src_ata", "unused", "dst_ata"},
				Instructions: []chain.Instruction{
					{
						ProgramID:      ProgramID,
						AccountIndices: []uint8{0, 1, 2},
						Data:           append([]byte{discTransfer}, le64(1)...),
					},
				},
			},
		},
	}
	p := New([]chain.Pubkey{"mint_X"})
	if got := p.Decode(block); len(got) != 0 {
		t.Fatalf("expected unchecked Transfer to be skipped under whitelist, got %d", len(got))
	}
}

func TestUncheckedTransferAllowedWithoutWhitelist(t *testing.T) {
	block := &chain.Block{
		Slot: 1,
		Transactions: []chain.Transaction{
			{
				Signature:   "s1",
				AccountKeys: []chain.Pubkey{"src_ata", "unused", "dst_ata"},
				Instructions: []chain.Instruction{
					{
						ProgramID:      ProgramID,
						AccountIndices: []uint8{0, 1, 2},
						Data:           append([]byte{discTransfer}, le64(42)...),
					},
				},
			},
		},
	}
	p := New(nil)
	got := p.Decode(block)
	if len(got) != 1 || got[0].Amount != 42 {
		t.Fatalf("expected 1 transfer of 42, got %+v", got)
	}
	if got[0].Mint != pseudoMintUnknown {
		t.Errorf("expected unresolved transfer mint placeholder %q, got %q", pseudoMintUnknown, got[0].Mint)
	}
}

func TestMalformedInstructionSilentlySkipped(t *testing.T) {
	block := &chain.Block{
		Transactions: []chain.Transaction{
			{
				Instructions: []chain.Instruction{
					{ProgramID: ProgramID, Data: []byte{discTransferChecked, 1, 2}},
				},
			},
		},
	}
	p := New(nil)
	if got := p.Decode(block); len(got) != 0 {
		t.Fatalf("expected malformed instruction to be skipped, got %d", len(got))
	}
}
