package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	watchWriteWait    = 10 * time.Second
	watchPollInterval = time.Second
)

var watchUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// WatchSession streams session snapshots over a websocket until the session
// reaches a terminal status or the client goes away. Snapshots are sent on
// every status change plus one initial frame.
func (h *Handler) WatchSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	info, err := h.sessions.Info(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	conn, err := watchUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Reader goroutine: the client sends nothing meaningful, but reads must
	// drain for close frames to be processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(v any) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
		return conn.WriteJSON(v) == nil
	}
	if !send(info) {
		return
	}
	lastStatus := info.Status

	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			info, err := h.sessions.Info(r.Context(), id)
			if err != nil {
				_ = conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session gone"),
					time.Now().Add(watchWriteWait))
				return
			}
			if info.Status != lastStatus {
				if !send(info) {
					return
				}
				lastStatus = info.Status
			}
			if info.Status.Terminal() {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(watchWriteWait))
				return
			}
		}
	}
}
