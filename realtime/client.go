package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client is served from a different origin; auth happens via
	// the JWT checked before the upgrade, not the Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientCommand is what the browser sends over the socket: join/leave a
// room scoped to one reviewable item.
type clientCommand struct {
	Action string `json:"action"` // join | leave
	Room   string `json:"room"`
}

// Client is one websocket connection for one authenticated user.
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	userID int
	send   chan []byte
	rooms  map[string]bool
}

// ServeWS upgrades the request and starts the read/write pumps. userID must
// come from the authenticated session.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, userID int) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		id:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
		rooms:  make(map[string]bool),
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Warning: websocket client %s closed unexpectedly: %v", c.id, err)
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil || cmd.Room == "" {
			continue
		}

		// Room membership is owned by the hub run loop; hand the command
		// over instead of mutating maps from this goroutine.
		switch cmd.Action {
		case "join":
			c.hub.withRunLoop(func(h *Hub) {
				h.joinRoom(c, cmd.Room)
			})
			c.hub.replayHistory(c, cmd.Room)
		case "leave":
			c.hub.withRunLoop(func(h *Hub) {
				h.leaveRoom(c, cmd.Room)
			})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
