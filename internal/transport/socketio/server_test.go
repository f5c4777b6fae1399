package socketio_test

import (
	"testing"

	"github.com/patricknelwan/notchtify/internal/domain/nowplaying"
	"github.com/patricknelwan/notchtify/internal/infra/mpd"
	"github.com/patricknelwan/notchtify/internal/transport/socketio"
)

func newIdleMonitor() *nowplaying.Monitor {
	// An unreachable MPD client suffices as a controller; monitoring is
	// never started in these tests.
	controller := mpd.NewClient("localhost", 16600, "")
	return nowplaying.NewMonitor(controller, nil, nowplaying.NewState())
}

func TestNewServer(t *testing.T) {
	server, err := socketio.NewServer(newIdleMonitor())
	if err != nil {
		t.Errorf("NewServer should not return error: %v", err)
	}

	if server == nil {
		t.Error("NewServer should return a non-nil server")
	}
}

func TestServerClose(t *testing.T) {
	server, err := socketio.NewServer(newIdleMonitor())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	if err := server.Close(); err != nil {
		t.Errorf("Close should not error: %v", err)
	}
}

func TestServerBroadcastStateWithoutClients(t *testing.T) {
	server, err := socketio.NewServer(newIdleMonitor())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	// BroadcastState should not panic with no clients
	server.BroadcastState()
}
