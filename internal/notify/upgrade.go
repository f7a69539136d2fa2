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
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/solidx/indexer/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// UpgradeAndServe upgrades an HTTP request to a websocket connection and
// runs ServeConn for its lifetime. Intended as the /ws route handler
// (§6).
func UpgradeAndServe(bus *Bus, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.GetLogger().Debug("websocket upgrade failed", "error", err)
		return
	}
	ServeConn(bus, conn)
}
