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

// Package store implements the relational persistence layer: the event
// store (C4), balance engine (C5), candle engine (C6), and cursor store
// (C7), all backed by a shared pgxpool.Pool.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the Postgres connection pool the writer loop (C8) and
// ingestion controller (C9) work against, in the same shape as the
// teacher's storage.Storage wrapper over a badger handle. The typed
// accessors (GetCursor/SetCursor, the counterparts of the teacher's
// GetCursor/UpdateCursor, and the insert/upsert functions) are
// package-level functions taking a Querier, so they run against Pool or
// inside a per-block transaction.
type Store struct {
	Pool *pgxpool.Pool
}

// Open connects a pool to databaseURL and applies the schema.
func Open(ctx context.Context, databaseURL string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	s := &Store{Pool: pool}
	if err := s.applySchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.Pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS token_transfers (
	signature TEXT NOT NULL,
	slot BIGINT NOT NULL,
	block_time TIMESTAMPTZ,
	mint_pubkey TEXT NOT NULL,
	source_owner TEXT NOT NULL,
	dest_owner TEXT NOT NULL,
	source_ata TEXT NOT NULL,
	dest_ata TEXT NOT NULL,
	amount BIGINT NOT NULL,
	tx_index INT NOT NULL,
	ix_index INT NOT NULL,
	PRIMARY KEY (signature, ix_index)
);

CREATE TABLE IF NOT EXISTS bonding_curve_trades (
	signature TEXT NOT NULL,
	slot BIGINT NOT NULL,
	block_time TIMESTAMPTZ,
	mint_pubkey TEXT NOT NULL,
	trader TEXT NOT NULL,
	side TEXT NOT NULL,
	token_amount BIGINT NOT NULL,
	sol_amount BIGINT NOT NULL,
	price_nanos_per_token BIGINT NOT NULL,
	venue TEXT NOT NULL,
	tx_index INT NOT NULL,
	ix_index INT NOT NULL,
	PRIMARY KEY (signature, ix_index)
);

CREATE TABLE IF NOT EXISTS balances (
	wallet TEXT NOT NULL,
	mint_pubkey TEXT NOT NULL,
	amount BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (wallet, mint_pubkey)
);

CREATE TABLE IF NOT EXISTS candles (
	mint_pubkey TEXT NOT NULL,
	timeframe_secs INT NOT NULL,
	bucket_start TIMESTAMPTZ NOT NULL,
	open BIGINT NOT NULL,
	high BIGINT NOT NULL,
	low BIGINT NOT NULL,
	close BIGINT NOT NULL,
	volume_token BIGINT NOT NULL DEFAULT 0,
	volume_sol BIGINT NOT NULL DEFAULT 0,
	trades_count INT NOT NULL DEFAULT 0,
	PRIMARY KEY (mint_pubkey, timeframe_secs, bucket_start)
);

CREATE TABLE IF NOT EXISTS last_processed_slot (
	id INT PRIMARY KEY,
	slot BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS indexer_events (
	id BIGSERIAL PRIMARY KEY,
	topic TEXT NOT NULL,
	mint_pubkey TEXT,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS mints (
	mint_pubkey TEXT PRIMARY KEY,
	symbol TEXT,
	decimals INT,
	first_seen_slot BIGINT NOT NULL
);
`

func (s *Store) applySchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
