// Package bonding decodes trades from the pump-style bonding-curve venue.
package bonding

import (
	"github.com/solidx/indexer/internal/chain"
	"github.com/solidx/indexer/internal/decode"
)

// ProgramID is the bonding-curve venue's program address.
const ProgramID chain.Pubkey = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

var (
	buyDisc  = chain.AnchorDiscriminator("buy")
	sellDisc = chain.AnchorDiscriminator("sell")
)

// Parser decodes bonding-curve buy/sell instructions.
type Parser struct{}

// New creates a bonding-curve venue parser.
func New() *Parser { return &Parser{} }

// Protocol names this decoder for logging/diagnostics.
func (p *Parser) Protocol() string { return string(decode.VenuePump) }

// Decode extracts trades from a block, in block order.
func (p *Parser) Decode(block *chain.Block) []decode.Trade {
	var out []decode.Trade
	for _, tx := range block.Transactions {
		for _, ix := range tx.Instructions {
			if ix.ProgramID != ProgramID {
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
	if len(ix.Data) < 8 {
		return decode.Trade{}, false
	}
	var disc [8]byte
	copy(disc[:], ix.Data[:8])

	var side decode.Side
	switch disc {
	case buyDisc:
		side = decode.SideBuy
	case sellDisc:
		side = decode.SideSell
	default:
		return decode.Trade{}, false
	}

	if len(ix.AccountIndices) < 7 {
		return decode.Trade{}, false
	}
	mint := ix.Account(tx, 2)
	trader := ix.Account(tx, 6)
	if mint == "" || trader == "" {
		return decode.Trade{}, false
	}

	args := ix.Data[8:]
	tokenAmount, ok := chain.ReadU64LE(args)
	if !ok {
		return decode.Trade{}, false
	}
	solAmount, ok := chain.ReadU64LE(args[8:])
	if !ok {
		return decode.Trade{}, false
	}

	return decode.Trade{
		Signature:          tx.Signature,
		Slot:               block.Slot,
		BlockTime:          block.BlockTime,
		Mint:               mint,
		Trader:             trader,
		Side:               side,
		TokenAmount:        int64(tokenAmount),
		SolAmount:          int64(solAmount),
		PriceNanosPerToken: decode.Price(int64(solAmount), int64(tokenAmount)),
		Venue:              decode.VenuePump,
		TxIndex:            tx.TxIndex,
		IxIndex:            ix.IxIndex,
	}, true
}
