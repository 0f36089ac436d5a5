package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"accounting-portal-api/models"
	"accounting-portal-api/services"
)

// Realtime event names pushed to room subscribers.
const (
	EventNewComment         = "new_comment"
	EventCommentReadReceipt = "comment_read_receipt"
	EventCommentHistory     = "comment_history"
	EventStatusChanged      = "status_changed"
)

// Event is the wire envelope for every realtime push.
type Event struct {
	Event string      `json:"event"`
	Room  string      `json:"room"`
	Data  interface{} `json:"data"`
}

// RoomName builds the channel name for one reviewable item's discussion.
func RoomName(parentType string, parentID int) string {
	return fmt.Sprintf("%s:%d", parentType, parentID)
}

type broadcastMsg struct {
	room        string
	excludeUser int
	payload     []byte
}

// Hub tracks connected clients and their room memberships, and fans events
// out per room. One hub serves the whole process.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	commands   chan func(*Hub)

	// clients and rooms are owned by the run loop.
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	// streams keeps the merged comment view per room so late joiners can be
	// replayed history without a DB round trip. Guarded by streamsMu; unlike
	// room membership it is touched from request goroutines.
	streamsMu sync.Mutex
	streams   map[string]*services.CommentStream
}

// NewHub creates an empty hub; call Run in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 64),
		commands:   make(chan func(*Hub), 16),
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		streams:    make(map[string]*services.CommentStream),
	}
}

// Run owns the client and room maps. It must be the only goroutine touching
// them.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; !ok {
				continue
			}
			delete(h.clients, client)
			for room := range client.rooms {
				h.leaveRoom(client, room)
			}
			close(client.send)

		case cmd := <-h.commands:
			cmd(h)

		case msg := <-h.broadcast:
			members := h.rooms[msg.room]
			for client := range members {
				if msg.excludeUser != 0 && client.userID == msg.excludeUser {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer: drop the connection rather than block
					// every other subscriber in the room.
					delete(h.clients, client)
					for room := range client.rooms {
						h.leaveRoom(client, room)
					}
					close(client.send)
				}
			}
		}
	}
}

// withRunLoop schedules fn on the run loop goroutine, which owns the client
// and room maps.
func (h *Hub) withRunLoop(fn func(*Hub)) {
	h.commands <- fn
}

func (h *Hub) joinRoom(client *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.rooms[room] = true
	h.ensureStream(room)
}

func (h *Hub) leaveRoom(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
			h.dropStream(room)
		}
	}
	delete(client.rooms, room)
}

// Broadcast pushes an event to every member of the room, skipping the
// excluded user's connections (0 excludes nobody).
func (h *Hub) Broadcast(room string, excludeUserID int, event Event) {
	event.Room = room
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Warning: failed to encode realtime event %s: %v", event.Event, err)
		return
	}
	h.broadcast <- broadcastMsg{room: room, excludeUser: excludeUserID, payload: payload}
}

// BroadcastNewComment pushes a stored comment to the parent's room. The
// author's own connections are excluded; their optimistic write already
// represents the comment and an echo would double-render it.
func (h *Hub) BroadcastNewComment(comment models.Comment) {
	room := RoomName(comment.ParentType, comment.ParentID)
	if s, ok := h.peekStream(room); ok {
		s.ApplyPush(comment)
	}
	h.Broadcast(room, comment.UserID, Event{
		Event: EventNewComment,
		Data:  map[string]interface{}{"comment": comment},
	})
}

// BroadcastReceipt pushes a read receipt to the parent's room. The reader's
// own connections are excluded.
func (h *Hub) BroadcastReceipt(parentType string, parentID int, receipt models.CommentReadReceipt) {
	room := RoomName(parentType, parentID)
	h.Broadcast(room, receipt.UserID, Event{
		Event: EventCommentReadReceipt,
		Data: map[string]interface{}{
			"comment_id": receipt.CommentID,
			"receipt":    receipt,
		},
	})
}

// BroadcastStatusChange tells room subscribers the item moved to a new
// status, so open detail screens refresh their queue position.
func (h *Hub) BroadcastStatusChange(item *models.ReviewItem, actorUserID int) {
	room := RoomName(item.ItemType, item.ItemID)
	h.Broadcast(room, actorUserID, Event{
		Event: EventStatusChanged,
		Data:  map[string]interface{}{"item": item.Ref()},
	})
}

// PrimeStream seeds the room's replay cache from a DB fetch. Merging is
// idempotent, so priming with an already-seen batch is harmless. Rooms with
// no subscribers have no cache and priming them is a no-op; otherwise every
// unjoined thread fetched over HTTP would pin a stream for the process
// lifetime.
func (h *Hub) PrimeStream(parentType string, parentID int, comments []models.Comment) {
	room := RoomName(parentType, parentID)
	if s, ok := h.peekStream(room); ok {
		s.ApplyBatch(comments)
	}
}

// ensureStream creates the room's replay cache. Called from joinRoom on the
// run loop; the cache lives only while the room has members.
func (h *Hub) ensureStream(room string) *services.CommentStream {
	h.streamsMu.Lock()
	defer h.streamsMu.Unlock()
	s, ok := h.streams[room]
	if !ok {
		s = services.NewCommentStream()
		h.streams[room] = s
	}
	return s
}

func (h *Hub) peekStream(room string) (*services.CommentStream, bool) {
	h.streamsMu.Lock()
	defer h.streamsMu.Unlock()
	s, ok := h.streams[room]
	return s, ok
}

func (h *Hub) dropStream(room string) {
	h.streamsMu.Lock()
	defer h.streamsMu.Unlock()
	delete(h.streams, room)
}

// replayHistory sends the room's merged comment history to a single client,
// as one event the client merges by id.
func (h *Hub) replayHistory(client *Client, room string) {
	s, ok := h.peekStream(room)
	if !ok || s.Len() == 0 {
		return
	}
	payload, err := json.Marshal(Event{
		Event: EventCommentHistory,
		Room:  room,
		Data:  map[string]interface{}{"comments": s.Snapshot()},
	})
	if err != nil {
		return
	}
	select {
	case client.send <- payload:
	default:
	}
}
