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
)

// UpsertMint records a mint the instant a decoder resolves a real mint
// address, enriching the ledger with the SPEC_FULL.md mint registry.
// decimals is overwritten when the call carries one (a nil decimals keeps
// the stored value), symbol is inserted as NULL and never updated,
// first_seen_slot is folded with LEAST. Never called for the
// AMM venue's opaque placeholder mint.
func UpsertMint(ctx context.Context, q Querier, mint string, decimals *int32, firstSeenSlot uint64) error {
	_, err := q.Exec(ctx, `
		INSERT INTO mints (mint_pubkey, symbol, decimals, first_seen_slot)
		VALUES ($1, NULL, $2, $3)
		ON CONFLICT (mint_pubkey) DO UPDATE
		SET decimals = COALESCE(EXCLUDED.decimals, mints.decimals),
			first_seen_slot = LEAST(mints.first_seen_slot, EXCLUDED.first_seen_slot)
	`, mint, decimals, firstSeenSlot)
	if err != nil {
		return fmt.Errorf("upserting mint %s: %w", mint, err)
	}
	return nil
}
