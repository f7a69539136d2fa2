// Package writer implements the writer loop (C8): the single consumer
// of the ingestion controller's bounded block queue. It decodes each
// block, persists transfers/trades/candles inside one transaction per
// block, advances the cursor, and emits notification events — in the
// exact step order and failure semantics described for C8.
package writer

import (
	"context"

	"github.com/solidx/indexer/internal/chain"
	"github.com/solidx/indexer/internal/decode"
	"github.com/solidx/indexer/internal/decode/amm"
	"github.com/solidx/indexer/internal/decode/bonding"
	"github.com/solidx/indexer/internal/decode/dlmm"
	"github.com/solidx/indexer/internal/decode/spl"
	"github.com/solidx/indexer/internal/logging"
	"github.com/solidx/indexer/internal/store"
	"github.com/solidx/indexer/internal/streammirror"
)

// TransferDecoder is the pure C2 decode step.
type TransferDecoder interface {
	Decode(block *chain.Block) []decode.TokenTransfer
}

// TradeDecoder is the pure C3 decode step, implemented by each venue.
type TradeDecoder interface {
	Decode(block *chain.Block) []decode.Trade
}

// Loop is the single writer consuming from an ingestion queue.
type Loop struct {
	store  *store.Store
	spl    TransferDecoder
	venues []TradeDecoder
	mirror *streammirror.Mirror // nil disables the optional Redis mirror
}

// New creates a Loop wired to the standard SPL transfer decoder and all
// three DEX venue decoders. mirror may be nil.
func New(st *store.Store, mintWhitelist []chain.Pubkey, mirror *streammirror.Mirror) *Loop {
	return &Loop{
		store: st,
		spl:   spl.New(mintWhitelist),
		venues: []TradeDecoder{
			bonding.New(),
			amm.New(),
			dlmm.New(),
		},
		mirror: mirror,
	}
}

// Run drains queue until it closes or ctx is cancelled, processing one
// block at a time (§5: "exactly one writer").
func (l *Loop) Run(ctx context.Context, queue <-chan *chain.Block) {
	logger := logging.GetLogger()
	for {
		select {
		case <-ctx.Done():
			return
		case block, ok := <-queue:
			if !ok {
				return
			}
			if err := l.processBlock(ctx, block); err != nil {
				logger.Error("skipping remainder of block after failure", "slot", block.Slot, "error", err)
			}
		}
	}
}

// processBlock runs steps 2-6 of §4.8 inside a single transaction, so a
// failure partway through leaves neither side effects nor the cursor
// advanced — the block is retried whole on restart.
func (l *Loop) processBlock(ctx context.Context, block *chain.Block) error {
	transfers := l.spl.Decode(block)
	tradesByVenue := make([][]decode.Trade, len(l.venues))
	for i, v := range l.venues {
		tradesByVenue[i] = v.Decode(block)
	}

	tx, err := l.store.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := l.writeTransfers(ctx, tx, transfers); err != nil {
		return err
	}
	allTrades, err := l.writeTrades(ctx, tx, tradesByVenue)
	if err != nil {
		return err
	}
	if err := l.writeCandles(ctx, tx, allTrades); err != nil {
		return err
	}
	if err := store.SetCursor(ctx, tx, block.Slot); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	committed = true

	l.mirrorAfterCommit(ctx, transfers, allTrades)
	return nil
}

func (l *Loop) writeTransfers(ctx context.Context, tx store.Querier, transfers []decode.TokenTransfer) error {
	if len(transfers) == 0 {
		return nil
	}
	if err := store.InsertTransfers(ctx, tx, transfers); err != nil {
		return err
	}
	if err := store.ApplyTransferDeltas(ctx, tx, transfers); err != nil {
		return err
	}
	for _, t := range transfers {
		mint := t.Mint
		if err := store.InsertEvent(ctx, tx, "transfers", &mint, t); err != nil {
			return err
		}
		if err := upsertMintIfResolved(ctx, tx, t.Mint, t.Decimals, t.Slot); err != nil {
			return err
		}
	}
	return nil
}

// writeTrades inserts each venue's trades (where non-empty) and returns
// the full concatenation for candle aggregation.
func (l *Loop) writeTrades(ctx context.Context, tx store.Querier, tradesByVenue [][]decode.Trade) ([]decode.Trade, error) {
	var all []decode.Trade
	for _, trades := range tradesByVenue {
		if len(trades) == 0 {
			continue
		}
		if err := store.InsertTrades(ctx, tx, trades); err != nil {
			return nil, err
		}
		for _, tr := range trades {
			mint := tr.Mint
			if err := store.InsertEvent(ctx, tx, "bonding", &mint, tr); err != nil {
				return nil, err
			}
			if tr.Venue != decode.VenueRaydium {
				if err := upsertMintIfResolved(ctx, tx, tr.Mint, nil, tr.Slot); err != nil {
					return nil, err
				}
			}
		}
		all = append(all, trades...)
	}
	return all, nil
}

// writeCandles sorts the block's concatenated trades chronologically
// (required for `close` correctness across venues) and upserts one
// candle bucket per trade.
func (l *Loop) writeCandles(ctx context.Context, tx store.Querier, trades []decode.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	decode.SortTrades(trades)
	for _, t := range trades {
		candle, ok := store.CandleFromTrade(t)
		if !ok {
			continue
		}
		if err := store.UpsertCandle(ctx, tx, candle); err != nil {
			return err
		}
		mint := t.Mint
		if err := store.InsertEvent(ctx, tx, "candles", &mint, candle); err != nil {
			return err
		}
	}
	return nil
}

// pseudoMints are the non-address placeholders TokenTransfer.Mint/Trade.Mint
// can carry that must never populate the mint registry.
var pseudoMints = map[chain.Pubkey]struct{}{
	"system":       {},
	"burn":         {},
	"unknown_mint": {},
}

// upsertMintIfResolved records mint in the registry unless it's a pseudo
// placeholder or empty, matching SPEC_FULL.md's mint-registry carve-out
// ("never for the AMM placeholder mint", and never for the pseudo-wallet
// addresses mints/burns use in place of a real mint).
func upsertMintIfResolved(ctx context.Context, tx store.Querier, mint chain.Pubkey, decimals *int32, slot chain.Slot) error {
	if mint == "" {
		return nil
	}
	if _, ok := pseudoMints[mint]; ok {
		return nil
	}
	return store.UpsertMint(ctx, tx, string(mint), decimals, slot)
}

// mirrorAfterCommit best-effort publishes to Redis once the block's
// transaction has durably committed. Never gates block progress.
func (l *Loop) mirrorAfterCommit(ctx context.Context, transfers []decode.TokenTransfer, trades []decode.Trade) {
	if l.mirror == nil {
		return
	}
	for _, t := range transfers {
		l.mirror.MirrorTransfer(ctx, t)
	}
	for _, t := range trades {
		l.mirror.MirrorTrade(ctx, t)
	}
}
