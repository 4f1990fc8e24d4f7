package live

import (
	"sync"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/gofiber/contrib/websocket"
	natsclient "github.com/nats-io/nats.go"

	"github.com/teamcapacity/capacity-backend/apps/auth"
	appnats "github.com/teamcapacity/capacity-backend/apps/nats"
)

// EventSubject matches every broadcast event (capacity.project.*,
// capacity.assignment.*, capacity.budget.* and so on)
const EventSubject = "capacity.>"

type wsConn struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func (w *wsConn) write(data []byte) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// HandleWebSocket streams planning board events to an authenticated client.
// The client authenticates with ?access_token= since browsers cannot set
// headers on websocket upgrades.
func HandleWebSocket(c *websocket.Conn) {
	token := c.Query("access_token")
	if token == "" {
		log.Warning("Websocket connection without access token rejected")
		c.Close()
		return
	}

	claims, err := auth.ParseAccessToken(token)
	if err != nil {
		log.Warning("Websocket connection with invalid token rejected: %v", err)
		c.Close()
		return
	}

	log.Info("Websocket connected for user %s", claims.Email)

	ws := &wsConn{conn: c}

	sub, err := appnats.Subscribe(EventSubject, func(msg *natsclient.Msg) {
		if err := ws.write(msg.Data); err != nil {
			log.Debug("Error sending event to websocket: %v", err)
		}
	})
	if err != nil {
		log.Error("Failed to subscribe to events: %v", err)
		c.Close()
		return
	}
	defer sub.Unsubscribe()

	defer log.Info("Websocket disconnected for user %s", claims.Email)

	// Clients do not send messages; the read loop only detects disconnects
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error("Websocket error: %v", err)
			}
			break
		}
	}
}
