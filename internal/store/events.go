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
	"encoding/json"
	"fmt"
)

// NotifyChannel is the Postgres channel the notification bus (C10)
// listens on.
const NotifyChannel = "indexer_events"

// InsertEvent appends one row to the append-only event log and issues a
// pg_notify broadcast carrying {topic, mint_pubkey, payload} as a JSON
// string, per §4.4. The writer loop calls it inside the block's
// transaction and returns its error, so a failed event insert or notify
// fails and rolls back the whole block; events are not isolated from the
// rest of the block's writes.
func InsertEvent(ctx context.Context, q Querier, topic string, mint *string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling event payload for topic %s: %w", topic, err)
	}

	if _, err := q.Exec(ctx, `
		INSERT INTO indexer_events (topic, mint_pubkey, payload)
		VALUES ($1,$2,$3)
	`, topic, mint, payloadJSON); err != nil {
		return fmt.Errorf("inserting event for topic %s: %w", topic, err)
	}

	notifyPayload, err := json.Marshal(map[string]any{
		"topic":       topic,
		"mint_pubkey": mint,
		"payload":     payload,
	})
	if err != nil {
		return fmt.Errorf("marshaling notify payload for topic %s: %w", topic, err)
	}

	if _, err := q.Exec(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, string(notifyPayload)); err != nil {
		return fmt.Errorf("notifying for topic %s: %w", topic, err)
	}
	return nil
}
