// Copyright 2025 Alibaba Group Holding Ltd.
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

package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/alibaba/opensandbox/contentsd/pkg/log"
	"github.com/alibaba/opensandbox/contentsd/pkg/util/safego"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const eventPingInterval = 30 * time.Second

// EventsController streams change events over a websocket.
type EventsController struct {
	*basicController
}

func NewEventsController(ctx *gin.Context) *EventsController {
	return &EventsController{basicController: newBasicController(ctx)}
}

// Subscribe upgrades the connection and forwards every change event until
// the client goes away.
func (c *EventsController) Subscribe() {
	conn, err := upgrader.Upgrade(c.ctx.Writer, c.ctx.Request, nil)
	if err != nil {
		log.Warn("events: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if store.cfg.Broadcaster == nil {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseServiceRestart, "event feed disabled"),
			time.Now().Add(time.Second),
		)
		return
	}

	feed := store.cfg.Broadcaster.Subscribe()
	defer store.cfg.Broadcaster.Unsubscribe(feed)

	// Drain client frames so close handshakes are noticed
	closed := make(chan struct{})
	safego.Go(func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ticker := time.NewTicker(eventPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.ctx.Request.Context().Done():
			return
		case event := <-feed:
			if err := conn.WriteJSON(event); err != nil {
				log.Warn("events: failed to write event for %s: %v", event.Path, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
