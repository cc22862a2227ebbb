package restapi

import (
	"net/http"
	"time"

	"time_dividends/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || h.originAllowed(origin)
		},
	}
}

func (h *Handler) originAllowed(origin string) bool {
	if h.deps.Config == nil {
		return true
	}
	for _, allowed := range h.deps.Config.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// EventsHandler streams every applied view state of the session over a websocket.
// The last applied state, if any, is sent right after the upgrade.
func (h *Handler) EventsHandler(c *gin.Context) {
	if _, ok := h.session(c); !ok {
		return
	}
	sessionID := c.Param("id")

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "session", sessionID, "error", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.deps.Hub.Subscribe(sessionID)
	defer unsubscribe()
	h.logger.Debug("Websocket subscriber attached", "session", sessionID)

	// reader: only control frames are expected, it exits when the client goes away
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if state, ok := h.deps.Coordinator.State(sessionID); ok {
		if err := writeState(conn, state); err != nil {
			return
		}
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case state, open := <-updates:
			if !open {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(wsWriteWait))
				return
			}
			if err := writeState(conn, state); err != nil {
				h.logger.Debug("Websocket write failed", "session", sessionID, "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

func writeState(conn *websocket.Conn, state entity.ViewState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(websocket.TextMessage, payload)
}
