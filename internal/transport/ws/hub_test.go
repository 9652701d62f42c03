package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stoneveil/bastion/internal/encounter/event"
)

func TestHubRejectsClientsAfterShutdown(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	hub := NewHub(bus, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := newClient(hub, nil, nil, "en-US")
	if !hub.add(client) {
		t.Fatal("expected a running hub to accept the client")
	}

	cancel()
	select {
	case <-hub.done:
	case <-time.After(5 * time.Second):
		t.Fatal("hub did not shut down")
	}

	late := newClient(hub, nil, nil, "en-US")
	if hub.add(late) {
		t.Fatal("expected a stopped hub to reject registration")
	}

	// Detaching after shutdown must not block the read pump's teardown.
	removed := make(chan struct{})
	go func() {
		hub.remove(client)
		close(removed)
	}()
	select {
	case <-removed:
	case <-time.After(5 * time.Second):
		t.Fatal("remove blocked after shutdown")
	}
}
