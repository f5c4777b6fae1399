package spotify_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/patricknelwan/notchtify/internal/domain/nowplaying"
	"github.com/patricknelwan/notchtify/internal/infra/spotify"
)

// scriptedRunner returns a canned response and records the scripts it ran.
type scriptedRunner struct {
	response string
	err      error
	scripts  []string
}

func (r *scriptedRunner) run(ctx context.Context, script string) (string, error) {
	r.scripts = append(r.scripts, script)
	return r.response, r.err
}

func newTestController(r *scriptedRunner) *spotify.Controller {
	return spotify.NewController(spotify.WithScriptRunner(r.run))
}

func TestController_IsRunning(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     bool
		wantErr  bool
	}{
		{"running", "RUNNING", true, false},
		{"not running", "NOT_RUNNING", false, false},
		{"not installed", "NOT_FOUND", false, false},
		{"garbage", "???", false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runner := &scriptedRunner{response: tc.response}
			got, err := newTestController(runner).IsRunning(context.Background())
			if tc.wantErr != (err != nil) {
				t.Fatalf("IsRunning() error = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("IsRunning() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestController_IsRunningScriptFailure(t *testing.T) {
	runner := &scriptedRunner{err: errors.New("osascript exploded")}
	if _, err := newTestController(runner).IsRunning(context.Background()); err == nil {
		t.Fatal("Expected error when the script runner fails")
	}
}

func TestController_CurrentTrack(t *testing.T) {
	runner := &scriptedRunner{response: "Karma Police|||Radiohead|||OK Computer|||true|||42.5|||261000"}
	status, err := newTestController(runner).CurrentTrack(context.Background())
	if err != nil {
		t.Fatalf("CurrentTrack() error = %v", err)
	}

	if status.Track != "Karma Police" || status.Artist != "Radiohead" || status.Album != "OK Computer" {
		t.Errorf("Unexpected metadata: %+v", status)
	}
	if !status.Playing {
		t.Error("Expected playing state")
	}
	if status.Position != 42.5 {
		t.Errorf("Position = %v, want 42.5", status.Position)
	}
	if status.Duration != 261 {
		t.Errorf("Duration = %v, want 261 (milliseconds converted to seconds)", status.Duration)
	}
}

func TestController_CurrentTrackPaused(t *testing.T) {
	runner := &scriptedRunner{response: "Song|||Artist|||Album|||false|||0|||180000"}
	status, err := newTestController(runner).CurrentTrack(context.Background())
	if err != nil {
		t.Fatalf("CurrentTrack() error = %v", err)
	}
	if status.Playing {
		t.Error("Expected paused state")
	}
}

func TestController_CurrentTrackDecimalComma(t *testing.T) {
	// AppleScript formats numbers per system locale.
	runner := &scriptedRunner{response: "Song|||Artist|||Album|||true|||12,5|||200000"}
	status, err := newTestController(runner).CurrentTrack(context.Background())
	if err != nil {
		t.Fatalf("CurrentTrack() error = %v", err)
	}
	if status.Position != 12.5 {
		t.Errorf("Position = %v, want 12.5", status.Position)
	}
}

func TestController_CurrentTrackMarkers(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  error
	}{
		{"no track", "SPOTIFY_NO_TRACK", nowplaying.ErrNoTrack},
		{"quit mid-poll", "SPOTIFY_NOT_RUNNING", spotify.ErrNotRunning},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runner := &scriptedRunner{response: tc.response}
			_, err := newTestController(runner).CurrentTrack(context.Background())
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("CurrentTrack() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestController_CurrentTrackScriptingError(t *testing.T) {
	runner := &scriptedRunner{response: "SPOTIFY_ERROR"}
	_, err := newTestController(runner).CurrentTrack(context.Background())
	if err == nil {
		t.Fatal("Expected error for scripting failure")
	}
	if errors.Is(err, nowplaying.ErrNoTrack) {
		t.Error("Scripting failure must not be classified as no-track")
	}
}

func TestController_CurrentTrackMalformed(t *testing.T) {
	runner := &scriptedRunner{response: "Song|||Artist"}
	if _, err := newTestController(runner).CurrentTrack(context.Background()); err == nil {
		t.Fatal("Expected error for truncated response")
	}
}

func TestController_CurrentTrackUnparseableNumbers(t *testing.T) {
	// Metadata still comes through when the numeric fields are garbage.
	runner := &scriptedRunner{response: "Song|||Artist|||Album|||true|||???|||???"}
	status, err := newTestController(runner).CurrentTrack(context.Background())
	if err != nil {
		t.Fatalf("CurrentTrack() error = %v", err)
	}
	if status.Position != 0 || status.Duration != 0 {
		t.Errorf("Expected zeroed progress, got position=%v duration=%v", status.Position, status.Duration)
	}
}

func TestController_SendCommand(t *testing.T) {
	tests := []struct {
		cmd  nowplaying.Command
		verb string
	}{
		{nowplaying.CommandTogglePlayPause, "playpause"},
		{nowplaying.CommandNextTrack, "next track"},
		{nowplaying.CommandPreviousTrack, "previous track"},
	}

	for _, tc := range tests {
		t.Run(tc.verb, func(t *testing.T) {
			runner := &scriptedRunner{response: "SUCCESS"}
			if err := newTestController(runner).SendCommand(context.Background(), tc.cmd); err != nil {
				t.Fatalf("SendCommand() error = %v", err)
			}
			if len(runner.scripts) != 1 || !strings.Contains(runner.scripts[0], tc.verb) {
				t.Errorf("Script does not carry the %q verb:\n%s", tc.verb, runner.scripts)
			}
		})
	}
}

func TestController_SendCommandRejected(t *testing.T) {
	runner := &scriptedRunner{response: "ERROR: Spotify got an error"}
	err := newTestController(runner).SendCommand(context.Background(), nowplaying.CommandNextTrack)
	if err == nil {
		t.Fatal("Expected error for rejected command")
	}
	if !strings.Contains(err.Error(), "rejected") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestController_SendCommandUnknown(t *testing.T) {
	runner := &scriptedRunner{response: "SUCCESS"}
	if err := newTestController(runner).SendCommand(context.Background(), nowplaying.Command(99)); err == nil {
		t.Fatal("Expected error for unknown command")
	}
	if len(runner.scripts) != 0 {
		t.Error("No script should run for an unknown command")
	}
}
