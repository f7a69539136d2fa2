// Copyright 2026 Blink Labs Software
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

package notify

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/solidx/indexer/internal/logging"
	"github.com/solidx/indexer/internal/store"
)

// reconnectDelay is how long the bridge waits after a failed LISTEN
// connection or a broken WaitForNotification before retrying, mirroring
// the 2-second retry in original_source's PgListener loop.
const reconnectDelay = 2 * time.Second

// Bridge listens on Postgres's indexer_events channel and republishes
// every notification onto a Bus, the Go counterpart to
// original_source/indexer/indexer-api/src/main.rs's PgListener-to-
// broadcast-channel loop.
type Bridge struct {
	databaseURL string
	bus         *Bus
}

// NewBridge creates a Bridge that will LISTEN against databaseURL.
func NewBridge(databaseURL string, bus *Bus) *Bridge {
	return &Bridge{databaseURL: databaseURL, bus: bus}
}

// Run listens for notifications until ctx is cancelled, reconnecting on
// failure. Intended to run as one of the process's long-lived tasks.
func (br *Bridge) Run(ctx context.Context) {
	logger := logging.GetLogger()
	for {
		if ctx.Err() != nil {
			return
		}
		if err := br.listenOnce(ctx); err != nil {
			logger.Error("notification bridge listen failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (br *Bridge) listenOnce(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, br.databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "LISTEN "+store.NotifyChannel); err != nil {
		return err
	}

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		br.bus.Publish([]byte(notification.Payload))
	}
}
