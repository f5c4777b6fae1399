package nowplaying

import (
	"sync"

	"github.com/patricknelwan/notchtify/internal/domain/artwork"
)

// Status constants for the monitored player.
const (
	StatusUnknown       = "unknown"
	StatusPlayerAbsent  = "absent"
	StatusNoTrack       = "no-track"
	StatusPlaying       = "playing"
	StatusPaused        = "paused"
	StatusNotResponding = "not-responding"
)

// Sentinel texts shown while no real metadata is available.
const (
	SentinelNoTrack       = "No track playing"
	SentinelUnknownArtist = "Unknown artist"
	SentinelNotResponding = "Spotify not responding"
	SentinelRestartHint   = "Try restarting Spotify"
)

// Snapshot is an immutable copy of the observable playback state.
type Snapshot struct {
	Status        string
	PlayerRunning bool
	Playing       bool
	Track         string
	Artist        string
	Album         string
	Position      float64
	Duration      float64
	Artwork       *artwork.Artwork
	AutoExpand    bool
	ShowProgress  bool
}

// State is the observable now-playing state consumed by the UI layer.
// It is mutated only by the Monitor's coordinating goroutine (and by the
// preference setters); reads go through Snapshot. Safe for concurrent access.
type State struct {
	mu sync.RWMutex

	status        string
	playerRunning bool
	playing       bool
	track         string
	artist        string
	album         string
	position      float64
	duration      float64
	art           *artwork.Artwork

	// UI preferences
	autoExpand   bool
	showProgress bool

	// onChange fires after significant transitions (not progress-only
	// updates). Set once before monitoring starts.
	onChange func(Snapshot)
}

// NewState creates state in the initial unknown/idle condition.
func NewState() *State {
	return &State{
		status:     StatusUnknown,
		track:      SentinelNoTrack,
		artist:     SentinelUnknownArtist,
		autoExpand: true,
	}
}

// OnChange registers a callback fired after each significant state
// transition. Must be called before monitoring starts.
func (s *State) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		Status:        s.status,
		PlayerRunning: s.playerRunning,
		Playing:       s.playing,
		Track:         s.track,
		Artist:        s.artist,
		Album:         s.album,
		Position:      s.position,
		Duration:      s.duration,
		Artwork:       s.art,
		AutoExpand:    s.autoExpand,
		ShowProgress:  s.showProgress,
	}
}

// SetAutoExpand updates the auto-expand preference.
func (s *State) SetAutoExpand(on bool) {
	s.mu.Lock()
	s.autoExpand = on
	s.mu.Unlock()
}

// SetShowProgress updates the show-progress preference.
func (s *State) SetShowProgress(on bool) {
	s.mu.Lock()
	s.showProgress = on
	s.mu.Unlock()
}

// notify fires the change callback outside the state lock.
func (s *State) notify(snap Snapshot, fn func(Snapshot)) {
	if fn != nil {
		fn(snap)
	}
}

// setPlayerAbsent resets to the player-not-running condition, clearing all
// track metadata and artwork.
func (s *State) setPlayerAbsent() {
	s.mu.Lock()
	changed := s.status != StatusPlayerAbsent
	s.status = StatusPlayerAbsent
	s.playerRunning = false
	s.playing = false
	s.track = SentinelNoTrack
	s.artist = SentinelUnknownArtist
	s.album = ""
	s.position = 0
	s.duration = 0
	s.art = nil
	snap, fn := s.snapshotLocked(), s.onChange
	s.mu.Unlock()
	if changed {
		s.notify(snap, fn)
	}
}

// setNoTrack marks the player alive but idle. Artwork is left untouched.
func (s *State) setNoTrack() {
	s.mu.Lock()
	changed := s.status != StatusNoTrack
	s.status = StatusNoTrack
	s.playerRunning = true
	s.playing = false
	s.track = SentinelNoTrack
	s.artist = SentinelUnknownArtist
	s.album = ""
	s.position = 0
	s.duration = 0
	snap, fn := s.snapshotLocked(), s.onChange
	s.mu.Unlock()
	if changed {
		s.notify(snap, fn)
	}
}

// setNotResponding surfaces the degraded status after exhausted retries.
func (s *State) setNotResponding() {
	s.mu.Lock()
	changed := s.status != StatusNotResponding
	s.status = StatusNotResponding
	s.playing = false
	s.track = SentinelNotResponding
	s.artist = SentinelRestartHint
	snap, fn := s.snapshotLocked(), s.onChange
	s.mu.Unlock()
	if changed {
		s.notify(snap, fn)
	}
}

// setTrack applies a successful track query. Reports whether the (track,
// artist) identity changed; progress-only updates mutate silently without
// firing onChange.
func (s *State) setTrack(ts *TrackStatus) (trackChanged bool) {
	s.mu.Lock()

	trackChanged = s.track != ts.Track || s.artist != ts.Artist
	significant := trackChanged ||
		!s.playerRunning ||
		s.playing != ts.Playing ||
		s.album != ts.Album ||
		s.status == StatusUnknown || s.status == StatusNotResponding

	s.playerRunning = true
	s.playing = ts.Playing
	s.track = ts.Track
	s.artist = ts.Artist
	s.album = ts.Album
	s.position = ts.Position
	s.duration = ts.Duration
	if ts.Playing {
		s.status = StatusPlaying
	} else {
		s.status = StatusPaused
	}
	if trackChanged {
		// Stale art must never be shown against a new track; resolution
		// replaces it asynchronously.
		s.art = nil
	}

	snap, fn := s.snapshotLocked(), s.onChange
	s.mu.Unlock()

	if significant {
		s.notify(snap, fn)
	}
	return trackChanged
}

// setArtwork replaces the displayed artwork.
func (s *State) setArtwork(art *artwork.Artwork) {
	s.mu.Lock()
	s.art = art
	snap, fn := s.snapshotLocked(), s.onChange
	s.mu.Unlock()
	s.notify(snap, fn)
}
