// Copyright 2025 Blink Labs Software
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

// Package ingest implements the ingestion controller (C9): resumable
// streaming of blocks from an upstream source into a bounded queue
// consumed by the writer loop, with exponential backoff on reconnect.
// Adapted from the teacher's internal/indexer package — same
// AfterFunc-rescheduled sync-status heartbeat and updateStatus-on-cursor
// shape, generalized from a Cardano chainsync pipeline to a generic
// Solana block stream.
package ingest

import (
	"context"
	"time"

	"github.com/solidx/indexer/internal/chain"
	"github.com/solidx/indexer/internal/logging"
)

const (
	defaultInitialBackoff = 1000 * time.Millisecond
	defaultMaxBackoff     = 30_000 * time.Millisecond
	defaultQueueCapacity  = 1024
	syncStatusLogInterval = 30 * time.Second
)

// BlockStream is the upstream source of blocks, starting at a given
// slot. Implementations are expected to terminate the returned channel
// (close it) on a clean EOF and return a non-nil error on any other
// disconnect.
type BlockStream interface {
	// Stream connects at startSlot and returns a channel of blocks plus
	// an error channel that receives at most one error (or is closed on
	// clean EOF). Both channels are closed when the stream ends.
	Stream(ctx context.Context, startSlot uint64) (<-chan *chain.Block, <-chan error)
}

// CursorReader reads the durably persisted resume point (C7).
type CursorReader interface {
	GetCursor(ctx context.Context) (slot uint64, ok bool, err error)
}

// Controller drives BlockStream reconnects and feeds decoded blocks into
// a bounded queue for the writer loop to drain.
type Controller struct {
	stream   BlockStream
	cursor   CursorReader
	fromSlot uint64
	queue    chan *chain.Block

	initialBackoff time.Duration
	maxBackoff     time.Duration

	startSlot    uint64
	havePushed   bool
	lastPushed   uint64
	syncLogTimer *time.Timer
}

// New creates a Controller. fromSlot is used only when no cursor has
// been persisted yet. initialBackoffMs/maxBackoffMs <= 0 fall back to
// the §4.9 defaults (1000ms / 30000ms).
func New(stream BlockStream, cursor CursorReader, fromSlot uint64, initialBackoffMs, maxBackoffMs int) *Controller {
	initialBackoff := defaultInitialBackoff
	if initialBackoffMs > 0 {
		initialBackoff = time.Duration(initialBackoffMs) * time.Millisecond
	}
	maxBackoff := defaultMaxBackoff
	if maxBackoffMs > 0 {
		maxBackoff = time.Duration(maxBackoffMs) * time.Millisecond
	}
	return &Controller{
		stream:         stream,
		cursor:         cursor,
		fromSlot:       fromSlot,
		queue:          make(chan *chain.Block, defaultQueueCapacity),
		initialBackoff: initialBackoff,
		maxBackoff:     maxBackoff,
	}
}

// Queue returns the bounded channel the writer loop drains.
func (c *Controller) Queue() <-chan *chain.Block {
	return c.queue
}

// Run connects to the block stream and feeds blocks into the queue until
// ctx is cancelled, reconnecting with exponential backoff on failure and
// resuming from the highest slot successfully pushed. Apart from an error
// reading the cursor at start-up, it does not return until ctx is done
// (mirrors C8/C9 both being "supposed to run
// forever" per the process's termination contract).
func (c *Controller) Run(ctx context.Context) error {
	logger := logging.GetLogger()
	defer close(c.queue)

	startSlot, err := c.resumeSlot(ctx)
	if err != nil {
		return err
	}
	c.startSlot = startSlot
	c.scheduleSyncStatusLog()

	backoff := c.initialBackoff
	for {
		if ctx.Err() != nil {
			return nil
		}
		blocks, errc := c.stream.Stream(ctx, c.nextSlot())
		cleanEOF := c.drain(ctx, blocks, errc)
		if ctx.Err() != nil {
			return nil
		}
		if cleanEOF {
			backoff = c.initialBackoff
			continue
		}
		logger.Warn("block stream disconnected, backing off", "backoffMs", backoff.Milliseconds())
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}
}

// nextSlot is the slot the next (re)connect should resume from: the
// resolved start slot on the very first connect, and the slot after the
// last block actually pushed onto the queue on every reconnect after
// that (§4.9: "track the highest slot pushed, so reconnects resume from
// last_pushed + 1").
func (c *Controller) nextSlot() uint64 {
	if !c.havePushed {
		return c.startSlot
	}
	return c.lastPushed + 1
}

func (c *Controller) resumeSlot(ctx context.Context) (uint64, error) {
	slot, ok, err := c.cursor.GetCursor(ctx)
	if err != nil {
		return 0, err
	}
	if ok {
		return slot + 1, nil
	}
	return c.fromSlot, nil
}

// drain pushes every block from blocks onto the bounded queue
// (blocking under backpressure per §4.9/§5), stopping when blocks
// closes. It returns true for a clean EOF (errc closed with no error
// sent) and false otherwise.
func (c *Controller) drain(ctx context.Context, blocks <-chan *chain.Block, errc <-chan error) (cleanEOF bool) {
	for {
		select {
		case <-ctx.Done():
			return false
		case block, ok := <-blocks:
			if !ok {
				// blocks closed; treat as clean only if errc also closes
				// without an error.
				select {
				case err, ok := <-errc:
					return !ok || err == nil
				case <-ctx.Done():
					return false
				}
			}
			select {
			case c.queue <- block:
				c.lastPushed = block.Slot
				c.havePushed = true
			case <-ctx.Done():
				return false
			}
		}
	}
}

func (c *Controller) scheduleSyncStatusLog() {
	c.syncLogTimer = time.AfterFunc(syncStatusLogInterval, c.syncStatusLog)
}

func (c *Controller) syncStatusLog() {
	logger := logging.GetLogger()
	logger.Info("ingestion progress", "lastPushedSlot", c.lastPushed)
	c.scheduleSyncStatusLog()
}

// Stop cancels the periodic sync-status heartbeat. Safe to call even if
// Run was never started.
func (c *Controller) Stop() {
	if c.syncLogTimer != nil {
		c.syncLogTimer.Stop()
	}
}
