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
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetCursor reads the durable high-water mark, or ok=false if no block has
// ever been committed.
func GetCursor(ctx context.Context, q Querier) (slot uint64, ok bool, err error) {
	row := q.QueryRow(ctx, `SELECT slot FROM last_processed_slot WHERE id = 1`)
	if err := row.Scan(&slot); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("reading cursor: %w", err)
	}
	return slot, true, nil
}

// SetCursor unconditionally overwrites the singleton cursor row. Only
// called at the end of writer processing for a block, after all of its
// other side effects are durable (I4).
func SetCursor(ctx context.Context, q Querier, slot uint64) error {
	_, err := q.Exec(ctx, `
		INSERT INTO last_processed_slot (id, slot) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET slot = EXCLUDED.slot
	`, slot)
	if err != nil {
		return fmt.Errorf("setting cursor to %d: %w", slot, err)
	}
	return nil
}
