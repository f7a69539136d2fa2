// Package spl decodes SPL token-program instructions (transfers, mints,
// and burns) into decode.TokenTransfer values.
package spl

import (
	"github.com/solidx/indexer/internal/chain"
	"github.com/solidx/indexer/internal/decode"
)

// ProgramID is the Solana SPL Token Program address.
const ProgramID chain.Pubkey = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

const (
	discTransfer        = 3
	discMintTo          = 7
	discBurn            = 8
	discTransferChecked = 12
	discMintToChecked   = 13
	discBurnChecked     = 14
)

const (
	pseudoWalletSystem = "system"
	pseudoWalletBurn   = "burn"

	// pseudoMintUnknown is the placeholder mint for the unchecked
	// Transfer variant, which carries no mint on the wire (spec §9),
	// matching original_source's spl_parser.rs resolution.
	pseudoMintUnknown = "unknown_mint"
)

// Parser decodes SPL token-program instructions in a block, applying an
// optional mint whitelist.
type Parser struct {
	// MintWhitelist, when non-empty, restricts emitted transfers to these
	// mints. An unchecked Transfer (discriminator 3) cannot be
	// mint-resolved and is skipped whenever the whitelist is non-empty.
	MintWhitelist map[chain.Pubkey]struct{}
}

// New creates a Parser with the given whitelist (may be nil or empty to
// disable filtering).
func New(whitelist []chain.Pubkey) *Parser {
	p := &Parser{}
	if len(whitelist) > 0 {
		p.MintWhitelist = make(map[chain.Pubkey]struct{}, len(whitelist))
		for _, m := range whitelist {
			p.MintWhitelist[m] = struct{}{}
		}
	}
	return p
}

// Protocol names this decoder for logging/diagnostics.
func (p *Parser) Protocol() string { return "spl-token" }

// Decode extracts token transfers from a block, in block order
// (tx_index ascending, ix_index ascending within a tx). Malformed or
// short instructions are silently skipped; this decoder never errors.
func (p *Parser) Decode(block *chain.Block) []decode.TokenTransfer {
	var out []decode.TokenTransfer
	for _, tx := range block.Transactions {
		for _, ix := range tx.Instructions {
			if ix.ProgramID != ProgramID {
				continue
			}
			t, ok := p.decodeInstruction(block, tx, ix)
			if !ok {
				continue
			}
			out = append(out, t)
		}
	}
	return out
}

func (p *Parser) decodeInstruction(
	block *chain.Block,
	tx chain.Transaction,
	ix chain.Instruction,
) (decode.TokenTransfer, bool) {
	if len(ix.Data) < 1 {
		return decode.TokenTransfer{}, false
	}

	base := decode.TokenTransfer{
		Signature: tx.Signature,
		Slot:      block.Slot,
		BlockTime: block.BlockTime,
		TxIndex:   tx.TxIndex,
		IxIndex:   ix.IxIndex,
	}

	switch ix.Data[0] {
	case discTransfer:
		// Mint not present in this variant. Emit only when no whitelist
		// is configured; otherwise the mint cannot be resolved and the
		// instruction is conservatively skipped (spec §9).
		if len(p.MintWhitelist) > 0 {
			return decode.TokenTransfer{}, false
		}
		amount, ok := chain.ReadU64LE(ix.Data[1:])
		if !ok {
			return decode.TokenTransfer{}, false
		}
		base.Mint = pseudoMintUnknown
		base.SourceATA = ix.Account(tx, 0)
		base.DestATA = ix.Account(tx, 2)
		base.SourceOwner = base.SourceATA
		base.DestOwner = base.DestATA
		base.Amount = int64(amount)
		return base, true

	case discTransferChecked:
		amount, ok := chain.ReadU64LE(ix.Data[1:])
		if !ok || len(ix.Data) < 10 {
			return decode.TokenTransfer{}, false
		}
		mint := ix.Account(tx, 1)
		if !p.mintAllowed(mint) {
			return decode.TokenTransfer{}, false
		}
		base.Mint = mint
		base.SourceATA = ix.Account(tx, 0)
		base.DestATA = ix.Account(tx, 2)
		base.SourceOwner = base.SourceATA
		base.DestOwner = base.DestATA
		base.Amount = int64(amount)
		base.Decimals = decimalsPtr(ix.Data[9])
		return base, true

	case discMintTo:
		amount, ok := chain.ReadU64LE(ix.Data[1:])
		if !ok {
			return decode.TokenTransfer{}, false
		}
		mint := ix.Account(tx, 0)
		if !p.mintAllowed(mint) {
			return decode.TokenTransfer{}, false
		}
		base.Mint = mint
		base.DestATA = ix.Account(tx, 1)
		base.SourceATA = pseudoWalletSystem
		base.SourceOwner = pseudoWalletSystem
		base.DestOwner = base.DestATA
		base.Amount = int64(amount)
		return base, true

	case discMintToChecked:
		amount, ok := chain.ReadU64LE(ix.Data[1:])
		if !ok || len(ix.Data) < 10 {
			return decode.TokenTransfer{}, false
		}
		mint := ix.Account(tx, 0)
		if !p.mintAllowed(mint) {
			return decode.TokenTransfer{}, false
		}
		base.Mint = mint
		base.DestATA = ix.Account(tx, 1)
		base.SourceATA = pseudoWalletSystem
		base.SourceOwner = pseudoWalletSystem
		base.DestOwner = base.DestATA
		base.Amount = int64(amount)
		base.Decimals = decimalsPtr(ix.Data[9])
		return base, true

	case discBurn:
		amount, ok := chain.ReadU64LE(ix.Data[1:])
		if !ok {
			return decode.TokenTransfer{}, false
		}
		mint := ix.Account(tx, 1)
		if !p.mintAllowed(mint) {
			return decode.TokenTransfer{}, false
		}
		base.Mint = mint
		base.SourceATA = ix.Account(tx, 0)
		base.DestATA = pseudoWalletBurn
		base.SourceOwner = base.SourceATA
		base.DestOwner = pseudoWalletBurn
		base.Amount = int64(amount)
		return base, true

	case discBurnChecked:
		amount, ok := chain.ReadU64LE(ix.Data[1:])
		if !ok || len(ix.Data) < 10 {
			return decode.TokenTransfer{}, false
		}
		mint := ix.Account(tx, 1)
		if !p.mintAllowed(mint) {
			return decode.TokenTransfer{}, false
		}
		base.Mint = mint
		base.SourceATA = ix.Account(tx, 0)
		base.DestATA = pseudoWalletBurn
		base.SourceOwner = base.SourceATA
		base.DestOwner = pseudoWalletBurn
		base.Amount = int64(amount)
		base.Decimals = decimalsPtr(ix.Data[9])
		return base, true

	default:
		return decode.TokenTransfer{}, false
	}
}

// decimalsPtr lifts a single decimals byte off a Checked instruction's
// trailing field into the pointer TokenTransfer.Decimals expects.
func decimalsPtr(b byte) *int32 {
	d := int32(b)
	return &d
}

// mintAllowed reports whether mint passes the whitelist filter. An empty
// whitelist allows everything.
func (p *Parser) mintAllowed(mint chain.Pubkey) bool {
	if len(p.MintWhitelist) == 0 {
		return true
	}
	_, ok := p.MintWhitelist[mint]
	return ok
}
