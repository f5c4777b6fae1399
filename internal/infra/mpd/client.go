// Package mpd adapts an MPD server to the now-playing controller interface,
// for running against mpd instead of the Spotify desktop app.
package mpd

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"

	"github.com/patricknelwan/notchtify/internal/domain/nowplaying"
)

// Client wraps the gompd client with reconnection logic and implements
// nowplaying.PlayerController.
type Client struct {
	mu       sync.Mutex
	client   *mpd.Client
	host     string
	port     int
	password string
}

// NewClient creates a new MPD-backed player controller. No connection is
// made until the first query.
func NewClient(host string, port int, password string) *Client {
	return &Client{
		host:     host,
		port:     port,
		password: password,
	}
}

// connectLocked establishes connection (must hold lock).
func (c *Client) connectLocked() error {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	log.Debug().Str("addr", addr).Msg("Connecting to MPD")

	client, err := mpd.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to MPD: %w", err)
	}

	if c.password != "" {
		if err := client.Command("password %s", c.password).OK(); err != nil {
			client.Close()
			return fmt.Errorf("MPD authentication failed: %w", err)
		}
	}

	c.client = client
	log.Info().Str("addr", addr).Msg("Connected to MPD")
	return nil
}

// ensureConnectedLocked checks connection and reconnects if needed.
func (c *Client) ensureConnectedLocked() error {
	if c.client == nil {
		return c.connectLocked()
	}

	if err := c.client.Ping(); err != nil {
		log.Warn().Err(err).Msg("MPD connection lost, reconnecting")
		c.client.Close()
		c.client = nil
		return c.connectLocked()
	}

	return nil
}

// Close closes the MPD connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		err := c.client.Close()
		c.client = nil
		return err
	}
	return nil
}

// IsRunning reports whether the MPD server is reachable. An unreachable
// server reads as the player being absent, not as an error.
func (c *Client) IsRunning(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnectedLocked(); err != nil {
		log.Debug().Err(err).Msg("MPD unreachable")
		return false, nil
	}
	return true, nil
}

// CurrentTrack queries MPD status and the current song.
func (c *Client) CurrentTrack(ctx context.Context) (*nowplaying.TrackStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnectedLocked(); err != nil {
		return nil, err
	}

	status, err := c.client.Status()
	if err != nil {
		return nil, fmt.Errorf("mpd status: %w", err)
	}
	if status["state"] == "stop" {
		return nil, nowplaying.ErrNoTrack
	}

	song, err := c.client.CurrentSong()
	if err != nil {
		return nil, fmt.Errorf("mpd currentsong: %w", err)
	}
	if len(song) == 0 || (song["Title"] == "" && song["file"] == "") {
		return nil, nowplaying.ErrNoTrack
	}

	title := song["Title"]
	if title == "" {
		// Untagged files fall back to their path.
		title = song["file"]
	}

	return &nowplaying.TrackStatus{
		Track:    title,
		Artist:   song["Artist"],
		Album:    song["Album"],
		Playing:  status["state"] == "play",
		Position: parseFloatAttr(status, "elapsed"),
		Duration: parseFloatAttr(status, "duration"),
	}, nil
}

// SendCommand issues a playback command.
func (c *Client) SendCommand(ctx context.Context, cmd nowplaying.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnectedLocked(); err != nil {
		return err
	}

	switch cmd {
	case nowplaying.CommandTogglePlayPause:
		return c.togglePlayPauseLocked()
	case nowplaying.CommandNextTrack:
		return c.client.Next()
	case nowplaying.CommandPreviousTrack:
		return c.client.Previous()
	default:
		return fmt.Errorf("unknown command %d", cmd)
	}
}

// togglePlayPauseLocked maps the single toggle command onto MPD's play/pause
// split, based on the current state.
func (c *Client) togglePlayPauseLocked() error {
	status, err := c.client.Status()
	if err != nil {
		return fmt.Errorf("mpd status: %w", err)
	}

	switch status["state"] {
	case "play":
		return c.client.Pause(true)
	case "pause":
		return c.client.Pause(false)
	default:
		// Stopped: resume the current queue position.
		return c.client.Play(-1)
	}
}

func parseFloatAttr(attrs mpd.Attrs, key string) float64 {
	v, err := strconv.ParseFloat(attrs[key], 64)
	if err != nil {
		return 0
	}
	return v
}
