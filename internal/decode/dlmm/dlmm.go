// Package dlmm decodes trades from the dynamic-liquidity-market-maker
// venue, including its v1/v2 bin-metadata tail.
package dlmm

import (
	"github.com/solidx/indexer/internal/chain"
	"github.com/solidx/indexer/internal/decode"
)

// ProgramID is the DLMM venue's program address.
const ProgramID chain.Pubkey = "LBUZKhRxPF3XUpBCjp4YeC6BNhu2nqBDt16ymccEZLo"

const (
	discSwap   = 11
	discSwapV2 = 22

	maxBins = 10
)

// Parser decodes DLMM swap instructions.
type Parser struct{}

// New creates a DLMM venue parser.
func New() *Parser { return &Parser{} }

// Protocol names this decoder for logging/diagnostics.
func (p *Parser) Protocol() string { return string(decode.VenueMeteora) }

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
	if len(ix.Data) < 17 {
		return decode.Trade{}, false
	}
	if len(ix.AccountIndices) < 2 {
		return decode.Trade{}, false
	}

	discriminator := ix.Data[0]
	amountIn, ok := chain.ReadU64LE(ix.Data[1:9])
	if !ok {
		return decode.Trade{}, false
	}
	amountOut, ok := chain.ReadU64LE(ix.Data[9:17])
	if !ok {
		return decode.Trade{}, false
	}

	// Version inference only gates how the optional v2 tail is parsed;
	// the tail fields themselves are not part of the Trade output.
	if isV2(ix, discriminator) {
		parseV2Tail(ix.Data)
	}

	trader := ix.Account(tx, 0)
	pool := ix.Account(tx, 1)
	if trader == "" || pool == "" {
		return decode.Trade{}, false
	}

	side := decode.InferDirection(amountIn, amountOut)

	return decode.Trade{
		Signature:          tx.Signature,
		Slot:               block.Slot,
		BlockTime:          block.BlockTime,
		Mint:               pool,
		Trader:             trader,
		Side:               side,
		TokenAmount:        int64(amountOut),
		SolAmount:          int64(amountIn),
		PriceNanosPerToken: decode.Price(int64(amountIn), int64(amountOut)),
		Venue:              decode.VenueMeteora,
		TxIndex:            tx.TxIndex,
		IxIndex:            ix.IxIndex,
	}, true
}

// isV2 reports whether a DLMM swap instruction should be interpreted as
// v2: either by explicit discriminator, or by account-count inference
// (v2's dynamic bin handling pulls in more accounts than v1's fixed
// layout).
func isV2(ix chain.Instruction, discriminator byte) bool {
	return len(ix.AccountIndices) > 8 || discriminator == discSwapV2
}

// binMetadata holds the bin ids parsed from the v2 tail. It is not
// surfaced on Trade, and decodeInstruction discards it.
type binMetadata struct {
	binIDs []uint32
}

// parseV2Tail parses the optional v2 metadata starting at offset 17:
// a u32 bin count (clamped to maxBins), followed by that many u32 bin
// ids. An optional trailing u64 fee tier may follow; it is not read.
// Malformed or truncated
// tails are tolerated; this never affects whether the trade itself is
// emitted.
func parseV2Tail(data []byte) binMetadata {
	var meta binMetadata
	if len(data) < 21 {
		return meta
	}
	binCount, ok := chain.ReadU32LE(data[17:])
	if !ok {
		return meta
	}
	if binCount > maxBins {
		binCount = maxBins
	}
	offset := 21
	for i := uint32(0); i < binCount; i++ {
		if offset+4 > len(data) {
			break
		}
		id, ok := chain.ReadU32LE(data[offset:])
		if !ok {
			break
		}
		meta.binIDs = append(meta.binIDs, id)
		offset += 4
	}
	return meta
}
