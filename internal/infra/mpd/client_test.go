package mpd_test

import (
	"context"
	"testing"

	"github.com/patricknelwan/notchtify/internal/domain/nowplaying"
	"github.com/patricknelwan/notchtify/internal/infra/mpd"
)

func TestNewClient(t *testing.T) {
	client := mpd.NewClient("localhost", 6600, "")

	if client == nil {
		t.Error("NewClient should return a non-nil client")
	}
}

func TestClientIsRunningUnreachable(t *testing.T) {
	// Nothing listens here; unreachable reads as not running, not an error.
	client := mpd.NewClient("localhost", 16600, "")
	defer client.Close()

	running, err := client.IsRunning(context.Background())
	if err != nil {
		t.Errorf("IsRunning should not error for an unreachable server, got %v", err)
	}
	if running {
		t.Error("IsRunning should report false for an unreachable server")
	}
}

func TestClientCurrentTrackUnreachable(t *testing.T) {
	client := mpd.NewClient("localhost", 16600, "")
	defer client.Close()

	_, err := client.CurrentTrack(context.Background())
	if err == nil {
		t.Error("CurrentTrack should fail for an unreachable server")
	}
}

func TestClientSendCommandUnreachable(t *testing.T) {
	client := mpd.NewClient("localhost", 16600, "")
	defer client.Close()

	err := client.SendCommand(context.Background(), nowplaying.CommandNextTrack)
	if err == nil {
		t.Error("SendCommand should fail for an unreachable server")
	}
}

func TestClientCloseWithoutConnect(t *testing.T) {
	client := mpd.NewClient("localhost", 6600, "")

	if err := client.Close(); err != nil {
		t.Errorf("Close without a connection should be a no-op, got %v", err)
	}
}
