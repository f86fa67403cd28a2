package ws

import "testing"

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()

	hub.AddClient(1, nil, ConnInfo{ConnID: "a", UserID: 7})
	if len(hub.rooms) != 1 {
		t.Fatalf("expected chat room to be created")
	}
	if _, ok := hub.getConnInfo(1, nil); !ok {
		t.Fatalf("expected conn info to be tracked")
	}

	hub.RemoveClient(1, nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected chat room to be removed")
	}
	if len(hub.connInfo) != 0 {
		t.Fatalf("expected conn info to be removed")
	}
}

func TestHubRemoveUnknownClient(t *testing.T) {
	hub := NewHub()

	// Removing from an unknown room must not panic.
	hub.RemoveClient(42, nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected no rooms")
	}
}
