// Package decode holds the result types shared by every instruction
// decoder (C2, C3.1-3) and the price rule common to the three DEX venues.
package decode

import (
	"time"

	"github.com/solidx/indexer/internal/chain"
)

// TokenTransfer is a decoded SPL token-program transfer, mint, or burn.
// Unique key (Signature, IxIndex).
type TokenTransfer struct {
	Signature   string
	Slot        chain.Slot
	BlockTime   *time.Time
	Mint        chain.Pubkey
	SourceOwner string
	DestOwner   string
	SourceATA   string
	DestATA     string
	Amount      int64
	TxIndex     int32
	IxIndex     int32

	// Decimals is the mint's decimal precision, present only for the
	// Checked instruction variants that carry it on the wire. Nil for
	// the unchecked Transfer/MintTo/Burn variants.
	Decimals *int32
}

// Side is the direction of a DEX trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Venue identifies which DEX program a Trade originated from.
type Venue string

const (
	VenuePump    Venue = "pump"
	VenueRaydium Venue = "raydium"
	VenueMeteora Venue = "meteora"
)

// Trade is a decoded DEX swap. Unique key (Signature, IxIndex).
type Trade struct {
	Signature          string
	Slot               chain.Slot
	BlockTime          *time.Time
	Mint               chain.Pubkey
	Trader             string
	Side               Side
	TokenAmount        int64
	SolAmount          int64
	PriceNanosPerToken int64
	Venue              Venue
	TxIndex            int32
	IxIndex            int32
}

// Price computes price_nanos_per_token := sol_amount / token_amount
// (integer division), 0 if token_amount == 0. Shared by all three DEX
// decoders.
func Price(solAmount, tokenAmount int64) int64 {
	if tokenAmount == 0 {
		return 0
	}
	return solAmount / tokenAmount
}

// InferDirection is the direction rule shared by the AMM and DLMM
// decoders: if either amount is zero, buy; otherwise a ratio of
// amount_out/amount_in below 0.1 signals sell, else buy.
func InferDirection(amountIn, amountOut uint64) Side {
	if amountIn == 0 || amountOut == 0 {
		return SideBuy
	}
	ratio := float64(amountOut) / float64(amountIn)
	if ratio < 0.1 {
		return SideSell
	}
	return SideBuy
}

// SortTrades orders trades by (tx_index, ix_index) ascending, the
// chronological order required before candle upsert so that `close`
// reflects the last trade in stream order regardless of how callers
// concatenated trades from multiple venues.
func SortTrades(trades []Trade) {
	sortTrades(trades)
}
