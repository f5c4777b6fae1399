// Package nowplaying tracks the state of an external media player by polling
// its control surface, and resolves album artwork for the current track.
package nowplaying

import (
	"context"
	"errors"

	"github.com/patricknelwan/notchtify/internal/domain/artwork"
)

// ErrNoTrack is returned by a player controller when the player is alive but
// has no track loaded.
var ErrNoTrack = errors.New("no track loaded")

// Command is a playback control instruction.
type Command int

const (
	CommandTogglePlayPause Command = iota
	CommandNextTrack
	CommandPreviousTrack
)

// String returns the command name for logging.
func (c Command) String() string {
	switch c {
	case CommandTogglePlayPause:
		return "toggle-play-pause"
	case CommandNextTrack:
		return "next-track"
	case CommandPreviousTrack:
		return "previous-track"
	default:
		return "unknown"
	}
}

// TrackStatus is a player's answer to a current-track query. Position and
// Duration are in seconds and come from an unreliable source; zero means
// unknown.
type TrackStatus struct {
	Track    string
	Artist   string
	Album    string
	Playing  bool
	Position float64
	Duration float64
}

// PlayerController is the control surface of the external media player.
// Implementations query and command the player process; every method is a
// network or scripting round trip and honors the context.
type PlayerController interface {
	// IsRunning reports whether the player process is alive.
	IsRunning(ctx context.Context) (bool, error)

	// CurrentTrack returns the current track, ErrNoTrack when the player is
	// alive but idle, or another error for a transient scripting failure.
	CurrentTrack(ctx context.Context) (*TrackStatus, error)

	// SendCommand issues a playback control instruction.
	SendCommand(ctx context.Context, cmd Command) error
}

// ArtResolver resolves album artwork for a (track, artist) pair.
type ArtResolver interface {
	Resolve(ctx context.Context, track, artist string) (*artwork.Artwork, error)
}
