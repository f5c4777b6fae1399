// Package spotify controls the macOS Spotify desktop application through
// AppleScript, shelling out to osascript for every query and command.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/patricknelwan/notchtify/internal/domain/nowplaying"
)

// ErrNotRunning is returned by CurrentTrack when the application quit between
// the liveness check and the track query.
var ErrNotRunning = errors.New("spotify is not running")

// runScriptFunc executes an AppleScript source and returns its string result.
type runScriptFunc func(ctx context.Context, script string) (string, error)

// Controller implements nowplaying.PlayerController against the Spotify
// desktop app.
type Controller struct {
	runScript runScriptFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithScriptRunner replaces the osascript execution path.
func WithScriptRunner(fn runScriptFunc) Option {
	return func(c *Controller) {
		c.runScript = fn
	}
}

// NewController creates an AppleScript-backed player controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		runScript: runOsascript,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsRunning reports whether the Spotify application is currently running.
// A missing application ("Spotify" not installed) reads as not running.
func (c *Controller) IsRunning(ctx context.Context) (bool, error) {
	out, err := c.runScript(ctx, livenessScript)
	if err != nil {
		return false, fmt.Errorf("liveness check: %w", err)
	}

	switch out {
	case markerRunning:
		return true, nil
	case markerNotRunning, markerNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected liveness response %q", out)
	}
}

// CurrentTrack queries the now-playing track.
func (c *Controller) CurrentTrack(ctx context.Context) (*nowplaying.TrackStatus, error) {
	out, err := c.runScript(ctx, trackScript)
	if err != nil {
		return nil, fmt.Errorf("track query: %w", err)
	}

	switch out {
	case markerNoTrack:
		return nil, nowplaying.ErrNoTrack
	case markerAbsent:
		return nil, ErrNotRunning
	case markerError:
		return nil, errors.New("spotify scripting error")
	}

	status, err := parseTrackResponse(out)
	if err != nil {
		return nil, fmt.Errorf("track query: %w", err)
	}
	return status, nil
}

// SendCommand issues a playback command.
func (c *Controller) SendCommand(ctx context.Context, cmd nowplaying.Command) error {
	verb, err := commandVerb(cmd)
	if err != nil {
		return err
	}

	out, err := c.runScript(ctx, fmt.Sprintf(commandScriptFormat, verb))
	if err != nil {
		return fmt.Errorf("command %q: %w", verb, err)
	}
	if out != markerSuccess {
		return fmt.Errorf("command %q rejected: %s", verb, out)
	}
	return nil
}

func commandVerb(cmd nowplaying.Command) (string, error) {
	switch cmd {
	case nowplaying.CommandTogglePlayPause:
		return "playpause", nil
	case nowplaying.CommandNextTrack:
		return "next track", nil
	case nowplaying.CommandPreviousTrack:
		return "previous track", nil
	default:
		return "", fmt.Errorf("unknown command %d", cmd)
	}
}

// parseTrackResponse decodes the "|||"-separated track query response.
// Track, artist, album and playing state are required; position and duration
// are parsed tolerantly since AppleScript number formatting varies.
func parseTrackResponse(out string) (*nowplaying.TrackStatus, error) {
	fields := strings.Split(out, fieldSeparator)
	if len(fields) < 4 {
		return nil, fmt.Errorf("malformed track response %q", out)
	}

	status := &nowplaying.TrackStatus{
		Track:   fields[0],
		Artist:  fields[1],
		Album:   fields[2],
		Playing: fields[3] == "true",
	}

	if len(fields) >= 6 {
		status.Position = parseSeconds(fields[4])
		// Spotify reports track duration in milliseconds.
		status.Duration = parseSeconds(fields[5]) / 1000
	}

	return status, nil
}

func parseSeconds(s string) float64 {
	// Locale-dependent AppleScript formatting may use a decimal comma.
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		log.Debug().Str("value", s).Msg("Unparseable numeric field in track response")
		return 0
	}
	return v
}

func runOsascript(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		return "", fmt.Errorf("osascript: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
