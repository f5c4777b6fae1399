// Package socketio provides the Socket.io server that pushes now-playing
// state to clients and accepts playback commands from them.
package socketio

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/patricknelwan/notchtify/internal/domain/nowplaying"
)

// DefaultPushWindow is the debounce window for state broadcasts. Rapid
// track skips collapse into a single push per burst.
const DefaultPushWindow = 100 * time.Millisecond

// statePayload is the wire form of a state snapshot. Artwork bytes are not
// inlined; clients fetch them over HTTP when albumart is set.
type statePayload struct {
	Status        string  `json:"status"`
	PlayerRunning bool    `json:"playerRunning"`
	Playing       bool    `json:"playing"`
	Track         string  `json:"track"`
	Artist        string  `json:"artist"`
	Album         string  `json:"album"`
	Position      float64 `json:"position"`
	Duration      float64 `json:"duration"`
	Albumart      string  `json:"albumart,omitempty"`
	AutoExpand    bool    `json:"autoExpand"`
	ShowProgress  bool    `json:"showProgress"`
}

func payloadFor(snap nowplaying.Snapshot) statePayload {
	p := statePayload{
		Status:        snap.Status,
		PlayerRunning: snap.PlayerRunning,
		Playing:       snap.Playing,
		Track:         snap.Track,
		Artist:        snap.Artist,
		Album:         snap.Album,
		Position:      snap.Position,
		Duration:      snap.Duration,
		AutoExpand:    snap.AutoExpand,
		ShowProgress:  snap.ShowProgress,
	}
	if snap.Artwork != nil {
		p.Albumart = "/albumart"
	}
	return p
}

// Server handles Socket.io connections and events.
type Server struct {
	io        *socket.Server
	monitor   *nowplaying.Monitor
	debouncer *PushDebouncer
	mu        sync.RWMutex
	clients   map[string]*socket.Socket
}

// NewServer creates a new Socket.io server bound to the monitor's state.
// Must be called before monitoring starts so no transition is missed.
func NewServer(monitor *nowplaying.Monitor) (*Server, error) {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	server := socket.NewServer(nil, opts)

	s := &Server{
		io:      server,
		monitor: monitor,
		clients: make(map[string]*socket.Socket),
	}
	s.debouncer = NewPushDebouncer(DefaultPushWindow, s.BroadcastState)

	monitor.State().OnChange(func(nowplaying.Snapshot) {
		s.debouncer.Trigger()
	})

	s.setupHandlers()

	return s, nil
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())

		log.Info().Str("id", clientID).Msg("Client connected")

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		// Send initial state after small delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.pushState(client)
		}()

		// Handle disconnect
		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		client.On("getState", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getState")
			s.pushState(client)
		})

		client.On("toggle", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("toggle")
			s.monitor.TogglePlayPause()
		})

		client.On("next", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("next")
			s.monitor.NextTrack()
		})

		client.On("prev", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("prev")
			s.monitor.PreviousTrack()
		})

		client.On("setAutoExpand", func(args ...any) {
			if on, ok := boolArg(args); ok {
				log.Debug().Str("id", clientID).Bool("value", on).Msg("setAutoExpand")
				s.monitor.State().SetAutoExpand(on)
				s.BroadcastState()
			}
		})

		client.On("setShowProgress", func(args ...any) {
			if on, ok := boolArg(args); ok {
				log.Debug().Str("id", clientID).Bool("value", on).Msg("setShowProgress")
				s.monitor.State().SetShowProgress(on)
				s.BroadcastState()
			}
		})
	})
}

// boolArg extracts a boolean from either a bare value or a {"value": ...}
// envelope.
func boolArg(args []any) (bool, bool) {
	if len(args) == 0 {
		return false, false
	}
	if v, ok := args[0].(bool); ok {
		return v, true
	}
	if m, ok := args[0].(map[string]interface{}); ok {
		if v, ok := m["value"].(bool); ok {
			return v, true
		}
	}
	return false, false
}

// pushState sends current state to a client.
func (s *Server) pushState(client *socket.Socket) {
	client.Emit("pushState", payloadFor(s.monitor.State().Snapshot()))
}

// BroadcastState sends state to all connected clients.
func (s *Server) BroadcastState() {
	payload := payloadFor(s.monitor.State().Snapshot())

	s.io.Emit("pushState", payload)

	if log.Debug().Enabled() {
		data, _ := json.Marshal(payload)
		s.mu.RLock()
		clientCount := len(s.clients)
		s.mu.RUnlock()
		log.Debug().RawJSON("state", data).Int("clients", clientCount).Msg("Broadcast state")
	}
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close stops the debouncer and shuts the Socket.io server down.
func (s *Server) Close() error {
	s.debouncer.Stop()
	s.io.Close(nil)
	return nil
}
