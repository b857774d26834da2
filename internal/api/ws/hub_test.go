package ws

import (
	"encoding/json"
	"slices"
	"testing"
)

func newTestClient(t *testing.T, h *Hub, userID uint, username string) *Client {
	t.Helper()
	c := newClient(h, nil, userID, username)
	if !h.register(c) {
		t.Fatal("register refused")
	}
	return c
}

// next pops the next queued frame for c.
func next(t *testing.T, c *Client) WsEvent {
	t.Helper()
	select {
	case b := <-c.send:
		var evt WsEvent
		if err := json.Unmarshal(b, &evt); err != nil {
			t.Fatalf("bad frame %s: %v", b, err)
		}
		return evt
	default:
		t.Fatalf("no frame queued for %s", c.username)
		return WsEvent{}
	}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case b := <-c.send:
		t.Fatalf("unexpected frame for %s: %s", c.username, b)
	default:
	}
}

func typingQueue(t *testing.T, evt WsEvent) []string {
	t.Helper()
	if evt.Type != TypeTypingQueue {
		t.Fatalf("type = %q, want typing_queue", evt.Type)
	}
	var names []string
	if err := json.Unmarshal(evt.Data, &names); err != nil {
		t.Fatal(err)
	}
	return names
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub(nil)
	ana := newTestClient(t, h, 1, "ana")
	ben := newTestClient(t, h, 2, "ben")
	carl := newTestClient(t, h, 3, "carl")
	h.subscribe(ana, 10)
	h.subscribe(ben, 10)
	h.subscribe(carl, 20)

	if n := h.Broadcast(10, []byte(`{"type":"x"}`), ana); n != 1 {
		t.Fatalf("delivered to %d, want 1", n)
	}
	assertEmpty(t, ana)
	if evt := next(t, ben); evt.Type != "x" {
		t.Fatalf("ben got %+v", evt)
	}
	assertEmpty(t, carl)

	if n := h.Broadcast(10, []byte(`{"type":"y"}`), nil); n != 2 {
		t.Fatalf("delivered to %d, want 2", n)
	}
	next(t, ana)
	next(t, ben)

	if n := h.Broadcast(99, []byte(`{"type":"z"}`), nil); n != 0 {
		t.Fatalf("empty room delivered to %d", n)
	}
}

func TestHubSubscribeReplacesRoom(t *testing.T) {
	h := NewHub(nil)
	ana := newTestClient(t, h, 1, "ana")

	h.subscribe(ana, 10)
	h.subscribe(ana, 20)
	if got := h.Subscription(ana); got != 20 {
		t.Fatalf("subscription = %d, want 20", got)
	}
	if h.RoomSize(10) != 0 || h.RoomSize(20) != 1 {
		t.Fatalf("room sizes = %d, %d", h.RoomSize(10), h.RoomSize(20))
	}
	h.Broadcast(10, []byte(`{"type":"x"}`), nil)
	assertEmpty(t, ana)

	h.unregister(ana)
	h.unregister(ana)
	if h.RoomSize(20) != 0 || !ana.isClosed() {
		t.Fatal("unregister left the connection behind")
	}
	if h.subscribe(ana, 10) {
		t.Fatal("closed connection subscribed")
	}
}

func TestHubDropsSlowPeer(t *testing.T) {
	h := NewHub(nil)
	fast := newTestClient(t, h, 1, "fast")
	slow := newTestClient(t, h, 2, "slow")
	h.subscribe(fast, 10)
	h.subscribe(slow, 10)

	for i := 0; i < sendBufferSize; i++ {
		slow.send <- []byte(`{}`)
	}
	if n := h.Broadcast(10, []byte(`{"type":"x"}`), nil); n != 1 {
		t.Fatalf("delivered to %d, want 1", n)
	}
	if !slow.isClosed() {
		t.Fatal("slow peer still open")
	}
	if h.RoomSize(10) != 1 {
		t.Fatalf("room size = %d, want 1", h.RoomSize(10))
	}
	next(t, fast)
}

func TestHubTypingQueue(t *testing.T) {
	h := NewHub(nil)
	ana := newTestClient(t, h, 1, "ana")
	anaTab := newTestClient(t, h, 1, "ana")
	ben := newTestClient(t, h, 2, "ben")

	if h.setTyping(ana, true) {
		t.Fatal("typing accepted outside a room")
	}
	h.subscribe(ana, 10)
	h.subscribe(anaTab, 10)
	h.subscribe(ben, 10)

	h.setTyping(ana, true)
	for _, c := range []*Client{ana, anaTab, ben} {
		if got := typingQueue(t, next(t, c)); !slices.Equal(got, []string{"ana"}) {
			t.Fatalf("%s saw %v", c.id, got)
		}
	}

	// A second tab of the same user does not change the queue.
	h.setTyping(anaTab, true)
	h.setTyping(ana, false)
	assertEmpty(t, ben)

	h.setTyping(ben, true)
	if got := typingQueue(t, next(t, ben)); !slices.Equal(got, []string{"ana", "ben"}) {
		t.Fatalf("queue = %v", got)
	}
	next(t, ana)
	next(t, anaTab)

	h.unregister(anaTab)
	if got := typingQueue(t, next(t, ben)); !slices.Equal(got, []string{"ben"}) {
		t.Fatalf("queue after disconnect = %v", got)
	}
	if got := typingQueue(t, next(t, ana)); !slices.Equal(got, []string{"ben"}) {
		t.Fatalf("ana saw %v", got)
	}
}

func TestHubShutdown(t *testing.T) {
	h := NewHub(nil)
	ana := newTestClient(t, h, 1, "ana")
	h.subscribe(ana, 10)

	h.Shutdown()
	if !ana.isClosed() {
		t.Fatal("connection survived shutdown")
	}
	if h.register(newClient(h, nil, 2, "ben")) {
		t.Fatal("register accepted after shutdown")
	}
}

func TestHubEvict(t *testing.T) {
	h := NewHub(nil)
	ana := newTestClient(t, h, 1, "ana")
	anaTab := newTestClient(t, h, 1, "ana")
	ben := newTestClient(t, h, 2, "ben")
	for _, c := range []*Client{ana, anaTab, ben} {
		h.subscribe(c, 10)
	}
	h.setTyping(anaTab, true)
	for _, c := range []*Client{ana, anaTab, ben} {
		next(t, c)
	}

	evicted := h.Evict(10, 1)
	if len(evicted) != 2 {
		t.Fatalf("evicted %d connections, want 2", len(evicted))
	}
	for _, c := range evicted {
		if c.userID != 1 || h.Subscription(c) != 0 || c.isClosed() {
			t.Fatalf("bad eviction state for %s", c.id)
		}
	}
	if got := typingQueue(t, next(t, ben)); len(got) != 0 {
		t.Fatalf("typing queue after eviction = %v", got)
	}
	assertEmpty(t, ben)
	assertEmpty(t, ana)
	if h.RoomSize(10) != 1 {
		t.Fatalf("room size = %d, want 1", h.RoomSize(10))
	}

	if got := h.Evict(10, 1); len(got) != 0 {
		t.Fatalf("second eviction returned %d connections", len(got))
	}
	if got := h.Evict(99, 1); got != nil {
		t.Fatal("eviction from an empty room returned connections")
	}
}
