package player

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Subscription binds one voice session, one audio player and one FIFO track
// queue for a guild. It owns the session and player handles for its entire
// life and reacts to their state changes; it is destroyed only when the
// voice session reaches its terminal destroyed state.
type Subscription struct {
	id             string
	guildID        string
	textChannelID  string
	voiceChannelID string

	session VoiceSession
	player  AudioPlayer

	mu    sync.Mutex
	queue []*Track

	drain        drainLock
	readyWaiting atomic.Bool
	stopOnce     sync.Once

	notifier Notifier
	metrics  MetricsCollector
	log      zerolog.Logger

	// Reconnect policy knobs, overridable for tests.
	probeTimeout  time.Duration
	readyTimeout  time.Duration
	rejoinBackoff time.Duration

	onNowPlaying func(*Track)
	onFinished   func()
	onStop       func(*Subscription)
}

// Option configures a Subscription at construction time.
type Option func(*Subscription)

// WithNotifier sets the text notification sink.
func WithNotifier(n Notifier) Option {
	return func(s *Subscription) { s.notifier = n }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(s *Subscription) { s.metrics = m }
}

// WithLogger sets the subscription's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Subscription) { s.log = log }
}

// WithOnNowPlaying registers a hook invoked when a track starts playing.
func WithOnNowPlaying(fn func(*Track)) Option {
	return func(s *Subscription) { s.onNowPlaying = fn }
}

// WithOnFinished registers a hook invoked when the queue runs dry.
func WithOnFinished(fn func()) Option {
	return func(s *Subscription) { s.onFinished = fn }
}

// WithOnStop registers a hook invoked exactly once when the subscription
// terminates. The registry uses it to drop its entry.
func WithOnStop(fn func(*Subscription)) Option {
	return func(s *Subscription) { s.onStop = fn }
}

// WithTimeouts overrides the reconnect policy timings. Zero values keep the
// defaults.
func WithTimeouts(probe, ready, backoffStep time.Duration) Option {
	return func(s *Subscription) {
		if probe > 0 {
			s.probeTimeout = probe
		}
		if ready > 0 {
			s.readyTimeout = ready
		}
		if backoffStep > 0 {
			s.rejoinBackoff = backoffStep
		}
	}
}

type nopNotifier struct{}

func (nopNotifier) Send(string, string) {}

// NewSubscription creates a subscription owning the given session and player
// and wires itself to their state changes.
func NewSubscription(guildID, textChannelID, voiceChannelID string, session VoiceSession, audio AudioPlayer, opts ...Option) *Subscription {
	s := &Subscription{
		id:             uuid.NewString(),
		guildID:        guildID,
		textChannelID:  textChannelID,
		voiceChannelID: voiceChannelID,
		session:        session,
		player:         audio,
		notifier:       nopNotifier{},
		metrics:        nopMetrics{},
		log:            zerolog.Nop(),
		probeTimeout:   defaultProbeTimeout,
		readyTimeout:   defaultReadyTimeout,
		rejoinBackoff:  defaultRejoinBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("subscription", s.id).Str("guild", guildID).Logger()

	session.OnStateChange(s.handleVoiceState)
	session.OnError(func(err error) {
		s.log.Error().Err(err).Msg("voice session error")
	})
	audio.OnStateChange(s.handlePlayerState)
	audio.OnError(func(err error) {
		s.log.Error().Err(err).Msg("audio player error")
	})

	s.metrics.SubscriptionOpened()
	return s
}

// ID returns the subscription's correlation ID.
func (s *Subscription) ID() string { return s.id }

// GuildID returns the guild this subscription is bound to.
func (s *Subscription) GuildID() string { return s.guildID }

// TextChannelID returns the channel notifications are sent to.
func (s *Subscription) TextChannelID() string { return s.textChannelID }

// VoiceChannelID returns the joined voice channel.
func (s *Subscription) VoiceChannelID() string { return s.voiceChannelID }

// Session returns the owned voice session.
func (s *Subscription) Session() VoiceSession { return s.session }

// Enqueue appends a track to the tail of the queue and kicks the drain. The
// drain is a no-op if playback or another drain is already underway.
func (s *Subscription) Enqueue(t *Track) {
	s.mu.Lock()
	s.queue = append(s.queue, t)
	n := len(s.queue)
	s.mu.Unlock()

	s.log.Debug().Str("title", t.Title).Int("queue_len", n).Msg("track enqueued")
	s.processQueue()
}

// Pending returns a snapshot of the queued tracks, head first.
func (s *Subscription) Pending() []*Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Track, len(s.queue))
	copy(out, s.queue)
	return out
}

// ClearPending drops all queued tracks without touching current playback and
// returns how many were dropped.
func (s *Subscription) ClearPending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.queue)
	s.queue = nil
	return n
}

// NowPlaying returns the track attached to the currently playing resource.
func (s *Subscription) NowPlaying() (*Track, bool) {
	st := s.player.State()
	if st.Status != PlayerPlaying || st.Resource == nil {
		return nil, false
	}
	return st.Resource.Track(), true
}

// Skip force-stops the current track. The resulting idle transition advances
// the queue through the normal drain path.
func (s *Subscription) Skip() {
	s.player.Stop(false)
}

// Destroy tears down the owned voice session. The session's destroyed state
// change is the sole path that terminates the subscription.
func (s *Subscription) Destroy() {
	s.session.Destroy()
}

// Stop terminates the subscription: the drain lock is poisoned for good, all
// pending tracks are dropped and the player is force-stopped. No processQueue
// call after Stop can ever start playback again, because the lock is never
// released.
func (s *Subscription) Stop() {
	s.stopOnce.Do(func() {
		s.drain.Poison()

		s.mu.Lock()
		dropped := len(s.queue)
		s.queue = nil
		s.mu.Unlock()

		s.player.Stop(true)

		s.log.Info().Int("dropped", dropped).Msg("subscription stopped")
		s.metrics.SubscriptionClosed()
		if s.onStop != nil {
			s.onStop(s)
		}
	})
}

// popHead removes and returns the head of the queue, or nil when empty.
func (s *Subscription) popHead() *Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil
	}
	t := s.queue[0]
	s.queue = s.queue[1:]
	return t
}

func (s *Subscription) queueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// processQueue pops the head of the queue and starts it playing. Guarded by
// the drain lock: if another drain holds it, or the subscription stopped, or
// the player is busy, this is a silent no-op. A track whose resource fails
// to materialize is reported and skipped, and the drain recurses onto the
// next item until one plays or the queue empties.
func (s *Subscription) processQueue() {
	if !s.drain.TryAcquire() {
		return
	}
	if s.player.State().Status != PlayerIdle {
		s.drain.Release()
		return
	}

	track := s.popHead()
	if track == nil {
		// A failure recursion (or a drain race) bottomed out on an empty
		// queue with nothing playing.
		s.drain.Release()
		s.finishedQueue()
		return
	}

	res, err := track.CreateResource()
	if err != nil {
		s.skipFailed(track, err)
		return
	}
	if err := s.player.Play(res); err != nil {
		_ = res.Close()
		s.skipFailed(track, err)
		return
	}
	s.metrics.TrackStarted()
	s.drain.Release()
}

// skipFailed reports a per-track failure and moves on to the next item.
// Failures here are non-fatal to the subscription.
func (s *Subscription) skipFailed(track *Track, err error) {
	s.log.Warn().Err(err).Str("title", track.Title).Msg("skipping unplayable track")
	s.metrics.TrackFailed()
	s.notifier.Send(s.textChannelID, fmt.Sprintf("Error: `%s`", err))
	s.drain.Release()
	s.processQueue()
}

// handlePlayerState reacts to audio player transitions.
func (s *Subscription) handlePlayerState(prev, next PlayerState) {
	switch nextQueueAction(prev, next, s.queueLen()) {
	case queueAnnounce:
		track := next.Resource.Track()
		s.log.Info().Str("title", track.Title).Msg("now playing")
		s.notifier.Send(s.textChannelID, fmt.Sprintf("Now playing: **%s**", track.Title))
		if s.onNowPlaying != nil {
			s.onNowPlaying(track)
		}
	case queueDrain:
		s.processQueue()
	case queueFinished:
		s.finishedQueue()
	}
}

func (s *Subscription) finishedQueue() {
	s.log.Info().Msg("queue empty")
	s.notifier.Send(s.textChannelID, "Queue empty, nothing playing.")
	if s.onFinished != nil {
		s.onFinished()
	}
}

// handleVoiceState reacts to voice session transitions.
func (s *Subscription) handleVoiceState(prev, next VoiceState) {
	action := nextConnAction(next, s.session.RejoinAttempts(), s.readyWaiting.Load(), s.rejoinBackoff)
	s.log.Debug().
		Stringer("from", prev.Status).
		Stringer("to", next.Status).
		Stringer("action", action.Kind).
		Msg("voice state change")

	switch action.Kind {
	case connStop:
		s.Stop()

	case connDestroy:
		s.metrics.SessionDestroyed()
		s.session.Destroy()

	case connRejoin:
		s.metrics.RejoinScheduled()
		s.log.Info().Dur("delay", action.Delay).Int("attempt", s.session.RejoinAttempts()+1).Msg("scheduling rejoin")
		time.AfterFunc(action.Delay, func() {
			if !s.session.Rejoin() {
				s.log.Warn().Msg("rejoin rejected by transport")
			}
		})

	case connProbeMove:
		go s.probeChannelMove()

	case connAwaitReady:
		if s.readyWaiting.CompareAndSwap(false, true) {
			go s.awaitReady()
		}
	}
}

// probeChannelMove waits for the session to start reconnecting after an
// ambiguous disconnect. Reconnecting within the window means a channel move;
// silence means the bot was removed from the channel.
func (s *Subscription) probeChannelMove() {
	err := s.session.WaitForStatus(context.Background(), VoiceConnecting, s.probeTimeout)
	if err != nil {
		s.log.Info().Msg("no reconnect after ambiguous disconnect, destroying session")
		s.metrics.SessionDestroyed()
		s.session.Destroy()
	}
}

// awaitReady bounds how long the session may sit in a non-ready state. The
// latch is always cleared on exit so a later transition can wait again.
func (s *Subscription) awaitReady() {
	defer s.readyWaiting.Store(false)
	err := s.session.WaitForStatus(context.Background(), VoiceReady, s.readyTimeout)
	if err != nil && s.session.State().Status != VoiceDestroyed {
		s.log.Warn().Dur("timeout", s.readyTimeout).Msg("session never became ready, destroying")
		s.metrics.SessionDestroyed()
		s.session.Destroy()
	}
}
