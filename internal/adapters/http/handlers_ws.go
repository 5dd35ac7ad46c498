package web

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"church/internal/application/collection"
	"church/internal/platform/i18n"
)

// Live view timings.
const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 25 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin:     checkWSOrigin,
}

// checkWSOrigin accepts same-host origins and the configured extra hosts.
func checkWSOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return slices.ContainsFunc(wsOrigins, func(o string) bool { return strings.EqualFold(o, u.Host) })
}

// liveMessage is one push to the admin page.
type liveMessage struct {
	Type  string            `json:"type"`
	Views []collection.View `json:"views"`
}

// handleAdminSocket handles GET /ws/admin. It pushes every section view
// once on connect and again whenever the session's console changes. The
// socket closes when the client leaves or the session ends.
func handleAdminSocket(w http.ResponseWriter, r *http.Request) {
	c, ok := consoleFor(w, r)
	if !ok {
		return
	}
	lang, _ := i18n.Resolve(r)
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("live_event", "event", "upgrade_failed", "error", err)
		return
	}
	defer ws.Close()
	slog.Info("live_event", "event", "connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader: only control frames are expected; any error ends the connection.
	go func() {
		defer cancel()
		ws.SetReadLimit(1024)
		ws.SetReadDeadline(time.Now().Add(wsPongTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(wsPongTimeout))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := func() error {
		views := c.Views()
		for i := range views {
			views[i] = localizeView(lang, views[i])
		}
		ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return ws.WriteJSON(liveMessage{Type: "views", Views: views})
	}
	if err := push(); err != nil {
		return
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	updates := c.Updates()
	for {
		select {
		case <-ctx.Done():
			slog.Info("live_event", "event", "disconnected")
			return
		case _, ok := <-updates:
			if !ok {
				ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				slog.Info("live_event", "event", "session_ended")
				return
			}
			if err := push(); err != nil {
				return
			}
		case <-ping.C:
			// The ping also resyncs views in case another tab took the update signal.
			if err := push(); err != nil {
				return
			}
			ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
