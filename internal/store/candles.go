// Copyright 2023 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/solidx/indexer/internal/decode"
)

const defaultTimeframeSecs = 60

// Candle is a single OHLCV bucket, the §3 Candle entity.
type Candle struct {
	Mint          string
	TimeframeSecs int32
	BucketStart   time.Time
	Open          int64
	High          int64
	Low           int64
	Close         int64
	VolumeToken   int64
	VolumeSol     int64
	TradesCount   int32
}

// CandleFromTrade produces the candidate candle for a single trade:
// open = high = low = close = price, trades_count = 1 (§4.6).
func CandleFromTrade(t decode.Trade) (Candle, bool) {
	if t.BlockTime == nil {
		return Candle{}, false
	}
	bucket := t.BlockTime.Unix() - (t.BlockTime.Unix() % defaultTimeframeSecs)
	return Candle{
		Mint:          t.Mint,
		TimeframeSecs: defaultTimeframeSecs,
		BucketStart:   time.Unix(bucket, 0).UTC(),
		Open:          t.PriceNanosPerToken,
		High:          t.PriceNanosPerToken,
		Low:           t.PriceNanosPerToken,
		Close:         t.PriceNanosPerToken,
		VolumeToken:   t.TokenAmount,
		VolumeSol:     t.SolAmount,
		TradesCount:   1,
	}, true
}

// UpsertCandle merges a candidate candle into the bucket: high/low
// monotone, close overwritten (§9 — relies on callers upserting trades in
// chronological order), volumes and count additive (I3).
func UpsertCandle(ctx context.Context, q Querier, c Candle) error {
	_, err := q.Exec(ctx, `
		INSERT INTO candles (
			mint_pubkey, timeframe_secs, bucket_start, open, high, low,
			close, volume_token, volume_sol, trades_count
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (mint_pubkey, timeframe_secs, bucket_start)
		DO UPDATE SET
			high = GREATEST(candles.high, EXCLUDED.high),
			low = LEAST(candles.low, EXCLUDED.low),
			close = EXCLUDED.close,
			volume_token = candles.volume_token + EXCLUDED.volume_token,
			volume_sol = candles.volume_sol + EXCLUDED.volume_sol,
			trades_count = candles.trades_count + EXCLUDED.trades_count
	`,
		c.Mint, c.TimeframeSecs, c.BucketStart, c.Open, c.High, c.Low,
		c.Close, c.VolumeToken, c.VolumeSol, c.TradesCount,
	)
	if err != nil {
		return fmt.Errorf("upserting candle for %s: %w", c.Mint, err)
	}
	return nil
}
