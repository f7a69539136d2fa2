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
	"github.com/gorilla/websocket"
	"github.com/solidx/indexer/internal/logging"
)

var subscribedAck = []byte(`{"type":"subscribed"}`)

// ServeConn runs one subscriber connection's lifetime: reads subscribe
// messages, writes filtered broadcast payloads, and tears down the
// subscriber on any I/O failure. Callers own upgrading the HTTP request
// to a *websocket.Conn (the HTTP route itself is a collaborator, out of
// core scope per spec.md §1) and should run this in its own goroutine.
func ServeConn(bus *Bus, conn *websocket.Conn) {
	logger := logging.GetLogger()
	sub := bus.Register()
	defer bus.Unregister(sub)

	readErrs := make(chan error, 1)
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				readErrs <- err
				return
			}
			if sub.ApplySubscription(msg) {
				if err := conn.WriteMessage(websocket.TextMessage, subscribedAck); err != nil {
					readErrs <- err
					return
				}
			}
		}
	}()

	for {
		select {
		case err := <-readErrs:
			if err != nil {
				logger.Debug("subscriber connection closed", "error", err)
			}
			return
		case payload, ok := <-sub.Send():
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debug("subscriber send failed, closing", "error", err)
				return
			}
		}
	}
}
