package nowplaying

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/patricknelwan/notchtify/internal/domain/artwork"
)

// Default timing for the poll loop.
const (
	DefaultInterval     = 2 * time.Second
	DefaultRetryDelay   = 1 * time.Second
	DefaultCommandDelay = 500 * time.Millisecond
	DefaultQueryTimeout = 10 * time.Second
	DefaultMaxRetries   = 3
)

// Monitor polls the player controller on a fixed interval, classifies the
// responses, and maintains the observable State. All state mutation and
// in-flight bookkeeping happens on a single coordinating goroutine; the
// controller queries and artwork fetches run in the background and hand
// their results back over channels.
//
// Polls are serialized: a tick that arrives while a query or its retry is
// still unresolved is skipped, so overlapping queries can never race state
// updates. This is also the retry-vs-reschedule rule: a pending retry owns
// the poll slot until it resolves.
type Monitor struct {
	player PlayerController
	art    ArtResolver
	state  *State

	interval     time.Duration
	retryDelay   time.Duration
	commandDelay time.Duration
	queryTimeout time.Duration
	maxRetries   int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	pollRequests chan struct{}
}

// Option is a functional option for configuring the monitor.
type Option func(*Monitor)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		m.interval = d
	}
}

// WithRetryDelay sets the spacing between transient-error retries.
func WithRetryDelay(d time.Duration) Option {
	return func(m *Monitor) {
		m.retryDelay = d
	}
}

// WithCommandDelay sets how long after an acknowledged command the
// out-of-band follow-up poll fires.
func WithCommandDelay(d time.Duration) Option {
	return func(m *Monitor) {
		m.commandDelay = d
	}
}

// WithQueryTimeout bounds a single controller round trip.
func WithQueryTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		m.queryTimeout = d
	}
}

// WithMaxRetries sets how many consecutive transient errors are tolerated
// before the degraded status surfaces.
func WithMaxRetries(n int) Option {
	return func(m *Monitor) {
		m.maxRetries = n
	}
}

// NewMonitor creates a monitor. art may be nil to disable artwork resolution.
func NewMonitor(player PlayerController, art ArtResolver, state *State, opts ...Option) *Monitor {
	m := &Monitor{
		player:       player,
		art:          art,
		state:        state,
		interval:     DefaultInterval,
		retryDelay:   DefaultRetryDelay,
		commandDelay: DefaultCommandDelay,
		queryTimeout: DefaultQueryTimeout,
		maxRetries:   DefaultMaxRetries,
		pollRequests: make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// State returns the observable state the monitor maintains.
func (m *Monitor) State() *State {
	return m.state
}

// StartMonitoring launches the poll loop. Safe to call repeatedly.
func (m *Monitor) StartMonitoring() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})

	log.Info().
		Dur("interval", m.interval).
		Int("maxRetries", m.maxRetries).
		Msg("Now-playing monitor started")

	go m.run(ctx)
}

// StopMonitoring cancels the interval timer and any pending retry or
// rescheduled poll, then waits for the loop to exit. An artwork fetch
// already in flight runs to completion and still populates the caches.
func (m *Monitor) StopMonitoring() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.cancel()
	<-m.done
	m.running = false

	log.Info().Msg("Now-playing monitor stopped")
}

// TogglePlayPause toggles playback.
func (m *Monitor) TogglePlayPause() { m.IssueCommand(CommandTogglePlayPause) }

// NextTrack skips to the next track.
func (m *Monitor) NextTrack() { m.IssueCommand(CommandNextTrack) }

// PreviousTrack skips to the previous track.
func (m *Monitor) PreviousTrack() { m.IssueCommand(CommandPreviousTrack) }

// IssueCommand sends a fire-and-forget control instruction. On acknowledged
// success an out-of-band poll is scheduled to pick up the state change
// sooner than the next interval tick. Failures are logged, not retried; the
// next tick self-corrects.
func (m *Monitor) IssueCommand(cmd Command) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.queryTimeout)
		defer cancel()

		if err := m.player.SendCommand(ctx, cmd); err != nil {
			log.Warn().Err(err).Str("command", cmd.String()).Msg("Player command failed")
			return
		}

		log.Debug().Str("command", cmd.String()).Msg("Player command acknowledged")
		time.Sleep(m.commandDelay)
		m.RequestPoll()
	}()
}

// RequestPoll asks the loop for an out-of-band poll. Collapses into an
// already-pending request.
func (m *Monitor) RequestPoll() {
	select {
	case m.pollRequests <- struct{}{}:
	default:
	}
}

// pollResult is a completed controller round trip handed back to the loop.
type pollResult struct {
	running bool
	status  *TrackStatus
	err     error
}

// artResult is a completed artwork resolution handed back to the loop.
type artResult struct {
	key string
	art *artwork.Artwork
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	pollResults := make(chan pollResult, 1)
	artResults := make(chan artResult, 1)

	var (
		pollBusy   bool
		retryCount int
		retryC     <-chan time.Time
		currentKey string
	)

	// Poll immediately rather than waiting out the first interval.
	pollBusy = true
	m.startPoll(ctx, pollResults)

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if pollBusy {
				log.Debug().Msg("Skipping tick, previous poll unresolved")
				continue
			}
			retryCount = 0
			pollBusy = true
			m.startPoll(ctx, pollResults)

		case <-m.pollRequests:
			if pollBusy {
				continue
			}
			retryCount = 0
			pollBusy = true
			m.startPoll(ctx, pollResults)

		case <-retryC:
			retryC = nil
			// Retry re-runs the track query only, not the full poll cycle.
			m.startQuery(ctx, pollResults)

		case res := <-pollResults:
			switch {
			case res.err == nil && !res.running:
				retryCount = 0
				pollBusy = false
				currentKey = ""
				m.state.setPlayerAbsent()

			case res.err == nil && (res.status.Track == "" || res.status.Track == SentinelNoTrack):
				retryCount = 0
				pollBusy = false
				m.state.setNoTrack()

			case res.err == nil:
				retryCount = 0
				pollBusy = false
				if m.state.setTrack(res.status) {
					currentKey = artwork.Key(res.status.Track, res.status.Artist)
					m.resolveArt(ctx, currentKey, res.status.Track, res.status.Artist, artResults)
				}

			case errors.Is(res.err, ErrNoTrack):
				retryCount = 0
				pollBusy = false
				m.state.setNoTrack()

			default:
				retryCount++
				if retryCount < m.maxRetries {
					log.Warn().
						Err(res.err).
						Int("attempt", retryCount).
						Int("max", m.maxRetries).
						Msg("Transient player error, retrying")
					retryC = time.After(m.retryDelay)
				} else {
					log.Error().Err(res.err).Msg("Player not responding, giving up until next tick")
					pollBusy = false
					m.state.setNotResponding()
				}
			}

		case ar := <-artResults:
			// Only the result for the currently displayed track is applied;
			// stale keys were already written to the caches and are dropped
			// here.
			if ar.key == currentKey && ar.art != nil {
				m.state.setArtwork(ar.art)
			}
		}
	}
}

// startPoll runs the liveness check and track query off the loop goroutine.
func (m *Monitor) startPoll(ctx context.Context, results chan<- pollResult) {
	go func() {
		qctx, cancel := context.WithTimeout(ctx, m.queryTimeout)
		defer cancel()

		running, err := m.player.IsRunning(qctx)
		if err != nil {
			// Player-unreachable is never fatal; a scripting failure on the
			// liveness check reads as absent.
			log.Debug().Err(err).Msg("Player liveness check failed")
			running = false
		}
		if !running {
			m.deliver(ctx, results, pollResult{running: false})
			return
		}

		status, err := m.player.CurrentTrack(qctx)
		m.deliver(ctx, results, pollResult{running: true, status: status, err: err})
	}()
}

// startQuery re-runs only the track query, for the retry path.
func (m *Monitor) startQuery(ctx context.Context, results chan<- pollResult) {
	go func() {
		qctx, cancel := context.WithTimeout(ctx, m.queryTimeout)
		defer cancel()

		status, err := m.player.CurrentTrack(qctx)
		m.deliver(ctx, results, pollResult{running: true, status: status, err: err})
	}()
}

func (m *Monitor) deliver(ctx context.Context, results chan<- pollResult, res pollResult) {
	select {
	case results <- res:
	case <-ctx.Done():
	}
}

// resolveArt dispatches an asynchronous artwork resolution. The fetch itself
// is not tied to the monitor's lifetime: a completed fetch is valid cache
// content even if nothing displays it.
func (m *Monitor) resolveArt(ctx context.Context, key, track, artist string, results chan<- artResult) {
	if m.art == nil {
		return
	}

	go func() {
		art, err := m.art.Resolve(context.Background(), track, artist)
		if err != nil {
			log.Debug().
				Err(err).
				Str("track", track).
				Str("artist", artist).
				Msg("Artwork resolution failed")
		}

		select {
		case results <- artResult{key: key, art: art}:
		case <-ctx.Done():
		}
	}()
}
