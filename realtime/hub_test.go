package realtime

import (
	"testing"
	"time"

	"accounting-portal-api/models"
)

func runLoopSync(h *Hub) {
	done := make(chan struct{})
	h.withRunLoop(func(*Hub) { close(done) })
	<-done
}

func streamLen(h *Hub, room string) (int, bool) {
	s, ok := h.peekStream(room)
	if !ok {
		return 0, false
	}
	return s.Len(), true
}

func TestPrimeStreamRetainsOnlyActiveRooms(t *testing.T) {
	h := NewHub()
	go h.Run()

	room := RoomName("notice", 12)
	comments := []models.Comment{
		{CommentID: 1, ParentType: "notice", ParentID: 12, UserID: 3, CreateAt: time.Now()},
		{CommentID: 2, ParentType: "notice", ParentID: 12, UserID: 4, CreateAt: time.Now()},
	}

	// Nobody subscribed to the room yet; an HTTP fetch must not pin a cache.
	h.PrimeStream("notice", 12, comments)
	if _, ok := streamLen(h, room); ok {
		t.Fatal("priming a room with no subscribers should not create a stream")
	}

	client := &Client{
		id:     "test-client",
		hub:    h,
		userID: 3,
		send:   make(chan []byte, 8),
		rooms:  make(map[string]bool),
	}
	h.register <- client
	h.withRunLoop(func(hub *Hub) { hub.joinRoom(client, room) })
	runLoopSync(h)

	h.PrimeStream("notice", 12, comments)
	if n, ok := streamLen(h, room); !ok || n != 2 {
		t.Fatalf("joined room should hold the primed cache, got len=%d ok=%v", n, ok)
	}

	h.withRunLoop(func(hub *Hub) { hub.leaveRoom(client, room) })
	runLoopSync(h)
	if _, ok := streamLen(h, room); ok {
		t.Fatal("stream should be dropped once the last subscriber leaves")
	}
}
