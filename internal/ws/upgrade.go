package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/config"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/auth"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxMessageSize = 4096

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UpgradeRadarWS serves one radar session per connection. Auth is the access
// token in the "token" query parameter.
func UpgradeRadarWS(cfg *config.Config, hub *RadarHub, finder NearbyFinder, locations LocationSource) gin.HandlerFunc {
	rcfg := RadarConfigFrom(&cfg.Proximity)
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		token := c.Query("token")
		if token == "" {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","code":"UNAUTHORIZED","error":"token required"}`))
			return
		}
		claims, err := auth.ParseAccessToken(&cfg.JWT, token)
		if err != nil {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","code":"UNAUTHORIZED","error":"invalid token"}`))
			return
		}
		client := &Client{
			UserID:    claims.UserID,
			SessionID: uuid.NewString(),
			Send:      make(chan []byte, 64),
		}
		sess := NewSession(client, rcfg, finder, locations)
		hub.Attach(sess)
		logger.Info("radar session opened", zap.String("session_id", client.SessionID), zap.String("user_id", client.UserID))

		ctx, cancel := context.WithCancel(context.Background())
		incoming := make(chan []byte, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			sess.Run(ctx, incoming)
		}()
		go writePump(client, conn)

		readPump(ctx, conn, incoming)
		cancel()
		<-done
		hub.Detach(sess)
		logger.Info("radar session closed", zap.String("session_id", client.SessionID), zap.String("user_id", client.UserID))
	}
}

// writePump copies messages from client.Send to the connection.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump forwards text frames to incoming until the connection fails.
func readPump(ctx context.Context, conn *websocket.Conn, incoming chan<- []byte) {
	defer close(incoming)
	conn.SetReadLimit(maxMessageSize)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case incoming <- msg:
		case <-ctx.Done():
			return
		}
	}
}
