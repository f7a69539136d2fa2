// Package chain defines the core types the indexer decodes and processes:
// blocks, transactions, and instructions as handed off by the upstream
// block stream. All types here are immutable inputs; nothing in this
// package touches the database.
package chain

import "time"

// Pubkey is a base58-encoded Solana account or program address. The
// upstream BlockStream hands these off already decoded; the core never
// parses raw 32-byte public key bytes.
type Pubkey = string

// Slot is a monotonically increasing block ordinal.
type Slot = uint64

// Block is one decoded block from the upstream stream.
type Block struct {
	Slot         Slot
	BlockTime    *time.Time
	Transactions []Transaction
}

// Transaction is one transaction within a block, in block order.
type Transaction struct {
	Signature    string
	TxIndex      int32
	AccountKeys  []Pubkey
	Instructions []Instruction
}

// Instruction is one top-level instruction within a transaction.
//
// AccountIndices are offsets into the enclosing Transaction's AccountKeys;
// Account resolves one.
type Instruction struct {
	ProgramID      Pubkey
	AccountIndices []uint8
	Data           []byte
	IxIndex        int32
}

// Account resolves the i-th account index against the transaction's
// account key list. Returns "" if i is out of range for either slice.
func (ix Instruction) Account(tx Transaction, i int) Pubkey {
	if i < 0 || i >= len(ix.AccountIndices) {
		return ""
	}
	idx := int(ix.AccountIndices[i])
	if idx < 0 || idx >= len(tx.AccountKeys) {
		return ""
	}
	return tx.AccountKeys[idx]
}
