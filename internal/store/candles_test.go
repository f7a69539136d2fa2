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
	"testing"
	"time"

	"github.com/solidx/indexer/internal/decode"
)

func TestCandleFromTradeBucketFloor(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 37, 0, time.UTC)
	tr := decode.Trade{
		Mint:               "m",
		BlockTime:          &ts,
		PriceNanosPerToken: 100,
		TokenAmount:        1,
		SolAmount:          100,
	}
	c, ok := CandleFromTrade(tr)
	if !ok {
		t.Fatal("expected candle")
	}
	if c.BucketStart.Second() != 0 || c.BucketStart.Minute() != 0 {
		t.Errorf("expected bucket floored to the minute, got %v", c.BucketStart)
	}
	if c.Open != 100 || c.High != 100 || c.Low != 100 || c.Close != 100 {
		t.Errorf("expected OHLC all equal to trade price, got %+v", c)
	}
	if c.TradesCount != 1 {
		t.Errorf("expected trades_count=1, got %d", c.TradesCount)
	}
}

func TestCandleFromTradeNoBlockTimeSkipped(t *testing.T) {
	tr := decode.Trade{Mint: "m", PriceNanosPerToken: 100}
	if _, ok := CandleFromTrade(tr); ok {
		t.Error("expected no candle without a block time")
	}
}

// S5: candle merge semantics (pure-function portion; the SQL merge
// itself is exercised against a live Postgres instance, not here).
func TestCandleMergeSemanticsPure(t *testing.T) {
	ts := time.Unix(1_700_000_000, 0).UTC()
	t1 := decode.Trade{Mint: "m", BlockTime: &ts, PriceNanosPerToken: 100, TokenAmount: 1, SolAmount: 100}
	ts2 := ts.Add(30 * time.Second)
	t2 := decode.Trade{Mint: "m", BlockTime: &ts2, PriceNanosPerToken: 120, TokenAmount: 2, SolAmount: 240}

	c1, _ := CandleFromTrade(t1)
	c2, _ := CandleFromTrade(t2)

	if c1.BucketStart != c2.BucketStart {
		t.Fatalf("expected trades 30s apart to land in the same 60s bucket: %v vs %v", c1.BucketStart, c2.BucketStart)
	}

	// Manually fold c2 into c1 the way UpsertCandle's SQL would.
	merged := Candle{
		Open:        c1.Open,
		High:        max64(c1.High, c2.High),
		Low:         min64(c1.Low, c2.Low),
		Close:       c2.Close,
		VolumeToken: c1.VolumeToken + c2.VolumeToken,
		TradesCount: c1.TradesCount + c2.TradesCount,
	}
	if merged.Open != 100 || merged.High != 120 || merged.Low != 100 || merged.Close != 120 {
		t.Errorf("unexpected OHLC merge: %+v", merged)
	}
	if merged.VolumeToken != 3 || merged.TradesCount != 2 {
		t.Errorf("unexpected volume/count merge: %+v", merged)
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
