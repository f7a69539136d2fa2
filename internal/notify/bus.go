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

// Package notify implements the notification bus (C10): a bridge from
// Postgres LISTEN/NOTIFY to a set of filtered subscriber fan-out queues.
package notify

import (
	"encoding/json"
	"sync"

	"github.com/solidx/indexer/internal/logging"
)

// DefaultBufferCapacity is the bus's default per-subscriber buffer size
// (§4.10).
const DefaultBufferCapacity = 10_000

// Subscriber is one connected WS client's filtered view onto the bus.
// Registered and torn down the way the teacher's WatchManager registers
// and expires watches (internal/indexer/watches.go), generalized from
// TTL-expiry to close-on-send-failure. A lagging subscriber is not closed;
// payloads that overflow its buffer are dropped (see Bus.Publish).
type Subscriber struct {
	id      uint64
	send    chan []byte
	topics  map[string]struct{} // nil means "all topics"
	mint    *string
	closeMu sync.Mutex
	closed  bool
}

// subscribeMessage is the client-initiated `{type:"subscribe", ...}`
// request (§4.10).
type subscribeMessage struct {
	Type   string   `json:"type"`
	Topics []string `json:"topics"`
	Mint   *string  `json:"mint"`
}

// eventEnvelope is the shape InsertEvent's pg_notify payload takes; only
// the fields needed for filtering are parsed (§4.10: "parses enough of
// the payload to read topic and mint").
type eventEnvelope struct {
	Topic string  `json:"topic"`
	Mint  *string `json:"mint_pubkey"`
}

// ApplySubscription parses a raw `{type:"subscribe",...}` message and
// updates the subscriber's filters. Non-subscribe messages are ignored.
func (s *Subscriber) ApplySubscription(raw []byte) (subscribed bool) {
	var msg subscribeMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != "subscribe" {
		return false
	}
	if msg.Topics != nil {
		s.topics = make(map[string]struct{}, len(msg.Topics))
		for _, t := range msg.Topics {
			s.topics[t] = struct{}{}
		}
	} else {
		s.topics = nil
	}
	s.mint = msg.Mint
	return true
}

// matches reports whether this subscriber's filters accept payload.
func (s *Subscriber) matches(payload []byte) bool {
	var env eventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return false
	}
	if s.topics != nil {
		if _, ok := s.topics[env.Topic]; !ok {
			return false
		}
	}
	if s.mint != nil {
		if env.Mint == nil || *env.Mint != *s.mint {
			return false
		}
	}
	return true
}

// Send is called from a subscriber's own connection goroutine to pull the
// next filtered payload.
func (s *Subscriber) Send() <-chan []byte { return s.send }

// Close marks the subscriber closed and is safe to call more than once.
func (s *Subscriber) Close() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

// Bus fans out broadcast payloads to every registered Subscriber,
// applying each subscriber's topic/mint filter. Mutex-protected registry
// in the style of the teacher's WatchManager.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[uint64]*Subscriber
	nextID      uint64
	bufferCap   int
}

// NewBus creates a Bus with the given per-subscriber buffer capacity (0
// uses DefaultBufferCapacity).
func NewBus(bufferCap int) *Bus {
	if bufferCap <= 0 {
		bufferCap = DefaultBufferCapacity
	}
	return &Bus{
		subscribers: make(map[uint64]*Subscriber),
		bufferCap:   bufferCap,
	}
}

// Register creates and tracks a new Subscriber, with no topic/mint filter
// until it sends a subscribe message.
func (b *Bus) Register() *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscriber{
		id:   b.nextID,
		send: make(chan []byte, b.bufferCap),
	}
	b.subscribers[sub.id] = sub
	return sub
}

// Unregister removes a subscriber from the fan-out set. Safe to call more
// than once.
func (b *Bus) Unregister(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, sub.id)
	sub.Close()
}

// Publish fans a raw payload out to every matching subscriber. A full
// subscriber buffer (lagging subscriber) silently drops that payload for
// that subscriber only; other subscribers are unaffected.
func (b *Bus) Publish(payload []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	logger := logging.GetLogger()
	for _, sub := range b.subscribers {
		if !sub.matches(payload) {
			continue
		}
		select {
		case sub.send <- payload:
		default:
			logger.Warn("dropping event for lagging subscriber", "subscriberId", sub.id)
		}
	}
}

// Count returns the number of currently registered subscribers.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
