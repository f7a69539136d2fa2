// Package amm decodes trades from the concentrated-AMM venue (three
// program ID variants sharing one instruction shape).
package amm

import (
	"github.com/solidx/indexer/internal/chain"
	"github.com/solidx/indexer/internal/decode"
)

// Program IDs recognized as this venue.
const (
	ProgramIDV3     chain.Pubkey = "9KEPoZmtHkcsf9wXW4c6ZTwkdq4d5JZy2QTrPJWYC72"
	ProgramIDV4     chain.Pubkey = "675kPX9MHTjS2zt1qrNpOtSzVDfZtdztM2raKPLC5Jb"
	ProgramIDFusion chain.Pubkey = "PhoeNiXZ8ByJGLkxNfZRnkUfjvmuYqLR89jjccR8DL7"
)

// Parser decodes AMM swap instructions. The on-chain mint cannot be
// recovered from the instruction alone: Mint is a documented placeholder
// derived from the trader address, never the real token mint. Consumers
// must treat the Mint field on AMM rows as opaque.
type Parser struct{}

// New creates an AMM venue parser.
func New() *Parser { return &Parser{} }

// Protocol names this decoder for logging/diagnostics.
func (p *Parser) Protocol() string { return string(decode.VenueRaydium) }

func isAMMProgram(id chain.Pubkey) bool {
	return id == ProgramIDV3 || id == ProgramIDV4 || id == ProgramIDFusion
}

// Decode extracts trades from a block, in block order.
func (p *Parser) Decode(block *chain.Block) []decode.Trade {
	var out []decode.Trade
	for _, tx := range block.Transactions {
		for _, ix := range tx.Instructions {
			if !isAMMProgram(ix.ProgramID) {
				continue
			}
			t, ok := decodeInstruction(block, tx, ix)
			if !ok {
				continue
			}
			out = append(out, t)
		}
	}
	return out
}

func decodeInstruction(
	block *chain.Block,
	tx chain.Transaction,
	ix chain.Instruction,
) (decode.Trade, bool) {
	if len(ix.Data) < 17 {
		return decode.Trade{}, false
	}
	if len(ix.AccountIndices) < 3 {
		return decode.Trade{}, false
	}

	amountIn, ok := chain.ReadU64LE(ix.Data[1:9])
	if !ok {
		return decode.Trade{}, false
	}
	amountOut, ok := chain.ReadU64LE(ix.Data[9:17])
	if !ok {
		return decode.Trade{}, false
	}

	trader := ix.Account(tx, 0)
	if trader == "" {
		return decode.Trade{}, false
	}

	side := decode.InferDirection(amountIn, amountOut)
	mint := "amm_pool_" + prefix(trader, 8)

	return decode.Trade{
		Signature:          tx.Signature,
		Slot:               block.Slot,
		BlockTime:          block.BlockTime,
		Mint:               mint,
		Trader:             trader,
		Side:               side,
		TokenAmount:        int64(amountOut),
		SolAmount:          int64(amountIn),
		PriceNanosPerToken: decode.Price(int64(amountIn), int64(amountOut)),
		Venue:              decode.VenueRaydium,
		TxIndex:            tx.TxIndex,
		IxIndex:            ix.IxIndex,
	}, true
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
