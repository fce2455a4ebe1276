package voice

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/katsuwo/eniwa/pkg/player"
)

const (
	// readyPollInterval is how often the watcher samples the underlying
	// connection's ready flag.
	readyPollInterval = 250 * time.Millisecond
	// opusSendTimeout bounds how long a frame may wait for the send channel
	// before it is dropped.
	opusSendTimeout = 100 * time.Millisecond
)

// Session adapts a discordgo voice connection to the player.VoiceSession
// surface. discordgo exposes readiness as a flag rather than as events, so
// the session runs a small watcher that turns flag flips into state
// transitions.
type Session struct {
	dg        *discordgo.Session
	guildID   string
	channelID string
	log       zerolog.Logger

	mu        sync.Mutex
	vc        *discordgo.VoiceConnection
	state     player.VoiceState
	listeners []func(prev, next player.VoiceState)
	errFns    []func(error)
	waiters   []waiter

	attempts    int32
	done        chan struct{}
	destroyOnce sync.Once
}

type waiter struct {
	status player.VoiceStatus
	ch     chan struct{}
}

func newSession(dg *discordgo.Session, guildID, channelID string, log zerolog.Logger) *Session {
	return &Session{
		dg:        dg,
		guildID:   guildID,
		channelID: channelID,
		log:       log.With().Str("component", "voice").Str("guild", guildID).Logger(),
		state:     player.VoiceState{Status: player.VoiceSignalling},
		done:      make(chan struct{}),
	}
}

// connect performs the initial join and starts the readiness watcher.
func (s *Session) connect() {
	s.setState(player.VoiceState{Status: player.VoiceConnecting})

	vc, err := s.dg.ChannelVoiceJoin(s.guildID, s.channelID, false, true)
	if err != nil {
		s.emitError(errors.Wrap(err, "voice join"))
		s.setState(player.VoiceState{Status: player.VoiceDisconnected})
		return
	}

	s.mu.Lock()
	s.vc = vc
	s.mu.Unlock()

	go s.watch()
}

// watch translates the connection's ready flag into state transitions until
// the session is destroyed.
func (s *Session) watch() {
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			vc := s.conn()
			if vc == nil {
				continue
			}
			ready := vc.Ready
			current := s.State().Status
			switch {
			case ready && current != player.VoiceReady && current != player.VoiceDestroyed:
				s.setState(player.VoiceState{Status: player.VoiceReady})
			case !ready && current == player.VoiceReady:
				s.setState(player.VoiceState{Status: player.VoiceDisconnected})
			}
		}
	}
}

// State returns the current connection state.
func (s *Session) State() player.VoiceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnStateChange registers a state transition listener.
func (s *Session) OnStateChange(fn func(prev, next player.VoiceState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// OnError registers an error listener.
func (s *Session) OnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errFns = append(s.errFns, fn)
}

// WaitForStatus blocks until the session reaches the given status or the
// timeout elapses.
func (s *Session) WaitForStatus(ctx context.Context, status player.VoiceStatus, timeout time.Duration) error {
	s.mu.Lock()
	if s.state.Status == status {
		s.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	s.waiters = append(s.waiters, waiter{status: status, ch: ch})
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-time.After(timeout):
		return errors.Errorf("timed out waiting for voice state %s", status)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Rejoin reattempts the voice join on the same channel.
func (s *Session) Rejoin() bool {
	if s.State().Status == player.VoiceDestroyed {
		return false
	}
	attempt := atomic.AddInt32(&s.attempts, 1)
	s.log.Info().Int32("attempt", attempt).Msg("rejoining voice channel")

	s.setState(player.VoiceState{Status: player.VoiceConnecting})
	vc, err := s.dg.ChannelVoiceJoin(s.guildID, s.channelID, false, true)
	if err != nil {
		s.emitError(errors.Wrap(err, "voice rejoin"))
		s.setState(player.VoiceState{Status: player.VoiceDisconnected})
		return false
	}

	s.mu.Lock()
	s.vc = vc
	s.mu.Unlock()
	return true
}

// RejoinAttempts returns how many rejoins this session has attempted.
func (s *Session) RejoinAttempts() int {
	return int(atomic.LoadInt32(&s.attempts))
}

// Destroy disconnects and emits the terminal destroyed state exactly once.
func (s *Session) Destroy() {
	s.destroyOnce.Do(func() {
		close(s.done)
		if vc := s.conn(); vc != nil {
			if err := vc.Disconnect(); err != nil {
				s.log.Warn().Err(err).Msg("voice disconnect failed")
			}
		}
		s.setState(player.VoiceState{Status: player.VoiceDestroyed})
	})
}

// WriteOpus sends one encoded frame, dropping it if the send channel stays
// blocked past the send timeout.
func (s *Session) WriteOpus(ctx context.Context, frame []byte) error {
	vc := s.conn()
	if vc == nil || !vc.Ready {
		return errors.New("voice connection not ready")
	}
	select {
	case vc.OpusSend <- frame:
		return nil
	case <-time.After(opusSendTimeout):
		return errors.New("opus send channel blocked")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Speaking toggles the speaking indicator.
func (s *Session) Speaking(b bool) error {
	vc := s.conn()
	if vc == nil {
		return errors.New("no voice connection")
	}
	return vc.Speaking(b)
}

func (s *Session) conn() *discordgo.VoiceConnection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vc
}

func (s *Session) setState(next player.VoiceState) {
	s.mu.Lock()
	if s.state.Status == player.VoiceDestroyed && next.Status != player.VoiceDestroyed {
		// Destroyed is terminal.
		s.mu.Unlock()
		return
	}
	prev := s.state
	s.state = next
	listeners := append([]func(prev, next player.VoiceState){}, s.listeners...)
	var fire []chan struct{}
	remaining := s.waiters[:0]
	for _, w := range s.waiters {
		if w.status == next.Status {
			fire = append(fire, w.ch)
		} else {
			remaining = append(remaining, w)
		}
	}
	s.waiters = remaining
	s.mu.Unlock()

	for _, ch := range fire {
		close(ch)
	}
	for _, fn := range listeners {
		fn(prev, next)
	}
}

func (s *Session) emitError(err error) {
	s.mu.Lock()
	errFns := append([]func(error){}, s.errFns...)
	s.mu.Unlock()
	s.log.Error().Err(err).Msg("voice session error")
	for _, fn := range errFns {
		fn(err)
	}
}
