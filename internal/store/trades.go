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

	"github.com/solidx/indexer/internal/decode"
)

// InsertTrades inserts a batch of decoded DEX trades across any venue,
// idempotent under (signature, ix_index), matching InsertTransfers'
// dedup predicate.
func InsertTrades(ctx context.Context, q Querier, trades []decode.Trade) error {
	for _, t := range trades {
		_, err := q.Exec(ctx, `
			INSERT INTO bonding_curve_trades (
				signature, slot, block_time, mint_pubkey, trader, side,
				token_amount, sol_amount, price_nanos_per_token, venue,
				tx_index, ix_index
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			ON CONFLICT (signature, ix_index) DO NOTHING
		`,
			t.Signature, t.Slot, t.BlockTime, t.Mint, t.Trader, string(t.Side),
			t.TokenAmount, t.SolAmount, t.PriceNanosPerToken, string(t.Venue),
			t.TxIndex, t.IxIndex,
		)
		if err != nil {
			return fmt.Errorf("inserting trade %s/%d: %w", t.Signature, t.IxIndex, err)
		}
	}
	return nil
}
