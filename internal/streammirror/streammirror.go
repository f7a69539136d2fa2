// Package streammirror best-effort mirrors committed trades and
// transfers into per-venue Redis streams, supplementing the feature
// present in original_source's redis.rs that the spec distillation
// dropped. It never gates block progress: publish failures are logged
// and swallowed.
package streammirror

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/solidx/indexer/internal/decode"
	"github.com/solidx/indexer/internal/logging"
)

// DefaultMaxStreamLen caps each per-venue/per-mint stream via XTRIM
// MAXLEN ~ to bound unbounded Redis memory growth.
const DefaultMaxStreamLen = 10_000

// Mirror publishes decoded trades and transfers to Redis streams.
type Mirror struct {
	client       *redis.Client
	keyPrefix    string
	maxStreamLen int64
}

// New creates a Mirror. keyPrefix namespaces stream keys (e.g. "solidx:");
// maxStreamLen <= 0 uses DefaultMaxStreamLen.
func New(client *redis.Client, keyPrefix string, maxStreamLen int64) *Mirror {
	if maxStreamLen <= 0 {
		maxStreamLen = DefaultMaxStreamLen
	}
	return &Mirror{client: client, keyPrefix: keyPrefix, maxStreamLen: maxStreamLen}
}

// tradeStreamKey returns the stream key a trade is published under:
// "<prefix>trades:<venue>:<mint>".
func tradeStreamKey(keyPrefix string, t decode.Trade) string {
	return fmt.Sprintf("%strades:%s:%s", keyPrefix, t.Venue, t.Mint)
}

// transferStreamKey returns the stream key a transfer is published under:
// "<prefix>transfers:<mint>".
func transferStreamKey(keyPrefix string, t decode.TokenTransfer) string {
	return fmt.Sprintf("%stransfers:%s", keyPrefix, t.Mint)
}

// MirrorTrade publishes one trade to "<prefix>trades:<venue>:<mint>" and
// trims the stream to maxStreamLen. Errors are logged, never returned to
// the writer loop.
func (m *Mirror) MirrorTrade(ctx context.Context, t decode.Trade) {
	m.publish(ctx, tradeStreamKey(m.keyPrefix, t), map[string]any{
		"signature": t.Signature,
		"slot":      t.Slot,
		"trader":    t.Trader,
		"amount":    t.TokenAmount,
		"direction": t.Side,
		"price":     t.PriceNanosPerToken,
	})
}

// MirrorTransfer publishes one transfer to "<prefix>transfers:<mint>" and
// trims the stream to maxStreamLen.
func (m *Mirror) MirrorTransfer(ctx context.Context, t decode.TokenTransfer) {
	m.publish(ctx, transferStreamKey(m.keyPrefix, t), map[string]any{
		"signature": t.Signature,
		"slot":      t.Slot,
		"source":    t.SourceOwner,
		"dest":      t.DestOwner,
		"amount":    t.Amount,
	})
}

func (m *Mirror) publish(ctx context.Context, streamKey string, data map[string]any) {
	logger := logging.GetLogger()
	payload, err := json.Marshal(data)
	if err != nil {
		logger.Warn("streammirror: failed to marshal payload", "error", err, "stream", streamKey)
		return
	}
	if err := m.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: map[string]any{"data": payload},
	}).Err(); err != nil {
		logger.Warn("streammirror: XADD failed", "error", err, "stream", streamKey)
		return
	}
	if err := m.client.XTrimMaxLenApprox(ctx, streamKey, m.maxStreamLen, 0).Err(); err != nil {
		logger.Warn("streammirror: XTRIM failed", "error", err, "stream", streamKey)
	}
}
