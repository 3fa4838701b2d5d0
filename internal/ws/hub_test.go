package ws

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestConn() *Conn {
	return NewConn(new(websocket.Conn))
}

func TestHubRegisterAndCount(t *testing.T) {
	hub := NewHub(nil)

	hub.Register(1, nil, ConnInfo{ConnID: "a", UserID: 1, ConnectedAt: time.Now()})
	if got := hub.HandleCount(1); got != 1 {
		t.Fatalf("expected 1 handle, got %d", got)
	}
	if got := hub.HandleCount(2); got != 0 {
		t.Fatalf("expected 0 handles for unknown user, got %d", got)
	}
}

func TestHubMultipleHandlesPerUser(t *testing.T) {
	hub := NewHub(nil)

	// Distinct map keys stand in for distinct device connections.
	connA := newTestConn()
	connB := newTestConn()
	hub.Register(1, connA, ConnInfo{ConnID: "a", UserID: 1})
	hub.Register(1, connB, ConnInfo{ConnID: "b", UserID: 1})

	if got := hub.HandleCount(1); got != 2 {
		t.Fatalf("expected 2 handles, got %d", got)
	}

	hub.Unregister(1, connA)
	if got := hub.HandleCount(1); got != 1 {
		t.Fatalf("expected 1 handle after unregister, got %d", got)
	}
	if _, ok := hub.conns[1][connB]; !ok {
		t.Fatalf("unregister removed the wrong connection")
	}
}

func TestHubUnregisterLastHandleDropsUser(t *testing.T) {
	hub := NewHub(nil)

	conn := newTestConn()
	hub.Register(3, conn, ConnInfo{ConnID: "c", UserID: 3})
	hub.Unregister(3, conn)

	if _, ok := hub.conns[3]; ok {
		t.Fatalf("expected user entry removed once last handle is gone")
	}
}

func TestHubUnregisterUnknownIsNoop(t *testing.T) {
	hub := NewHub(nil)
	hub.Unregister(9, nil)
	if len(hub.conns) != 0 {
		t.Fatalf("expected empty hub, got %d users", len(hub.conns))
	}
}

func TestHubSendToUserWithNoConnections(t *testing.T) {
	hub := NewHub(nil)
	if got := hub.SendToUser(1, map[string]string{"hello": "world"}); got != 0 {
		t.Fatalf("expected 0 deliveries, got %d", got)
	}
}
