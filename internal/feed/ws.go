package feed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/codenames-go/internal/model"
)

// Time allowed to read the next pong from the peer
const pongWait = time.Minute

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) Send(msg Message) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

func (s *wsSink) Keepalive() error {
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// ServeWS upgrades the request and streams a session's feed as JSON
// messages. The feed is one way; anything the client sends is discarded.
func ServeWS(w http.ResponseWriter, r *http.Request, hub *Hub, src Source, playerID model.PlayerID, logger *slog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go readPump(conn, cancel)

	err = Stream(ctx, hub, src, playerID, &wsSink{conn: conn})
	if err != nil && !errors.Is(err, ErrClientDropped) {
		logger.Warn("websocket stream ended",
			slog.String("session_id", string(hub.SessionID())),
			slog.String("player_id", string(playerID)),
			slog.Any("error", err))
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump drains the connection so control frames are handled, and
// cancels the stream once the peer goes away
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
