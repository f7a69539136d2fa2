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

// ApplyDelta upserts (wallet, mint) with amount := coalesce(existing, 0) +
// delta. Deltas are commutative and associative (I2); dedup at the
// transfer-insert layer (I1) ensures at-most-once application per
// (signature, ix_index).
func ApplyDelta(ctx context.Context, q Querier, wallet, mint string, delta int64) error {
	_, err := q.Exec(ctx, `
		INSERT INTO balances (wallet, mint_pubkey, amount)
		VALUES ($1,$2,$3)
		ON CONFLICT (wallet, mint_pubkey)
		DO UPDATE SET amount = balances.amount + EXCLUDED.amount
	`, wallet, mint, delta)
	if err != nil {
		return fmt.Errorf("applying balance delta for %s/%s: %w", wallet, mint, err)
	}
	return nil
}

// ApplyTransferDeltas applies the two balance deltas (source debit, dest
// credit) for each transfer in the batch, row by row, per §4.5.
func ApplyTransferDeltas(ctx context.Context, q Querier, transfers []decode.TokenTransfer) error {
	for _, t := range transfers {
		if err := ApplyDelta(ctx, q, t.SourceOwner, t.Mint, -t.Amount); err != nil {
			return err
		}
		if err := ApplyDelta(ctx, q, t.DestOwner, t.Mint, t.Amount); err != nil {
			return err
		}
	}
	return nil
}
