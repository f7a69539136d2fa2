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

// InsertTransfers inserts a batch of decoded token transfers, idempotent
// under (signature, ix_index). A replay of the same batch inserts zero
// new rows (P1/I1).
func InsertTransfers(ctx context.Context, q Querier, transfers []decode.TokenTransfer) error {
	for _, t := range transfers {
		_, err := q.Exec(ctx, `
			INSERT INTO token_transfers (
				signature, slot, block_time, mint_pubkey, source_owner,
				dest_owner, source_ata, dest_ata, amount, tx_index, ix_index
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (signature, ix_index) DO NOTHING
		`,
			t.Signature, t.Slot, t.BlockTime, t.Mint, t.SourceOwner,
			t.DestOwner, t.SourceATA, t.DestATA, t.Amount, t.TxIndex, t.IxIndex,
		)
		if err != nil {
			return fmt.Errorf("inserting transfer %s/%d: %w", t.Signature, t.IxIndex, err)
		}
	}
	return nil
}
