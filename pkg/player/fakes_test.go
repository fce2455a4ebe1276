package player

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// fakeSession is a hand-driven VoiceSession. Tests push state transitions
// into it and observe what the subscription does in response.
type fakeSession struct {
	mu        sync.Mutex
	state     VoiceState
	listeners []func(prev, next VoiceState)
	errFns    []func(error)
	waiters   []sessionWaiter

	attempts     int32
	rejoinCalls  int32
	destroyCalls int32
	rejoinOK     bool
	destroyOnce  sync.Once
}

type sessionWaiter struct {
	status VoiceStatus
	ch     chan struct{}
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		state:    VoiceState{Status: VoiceSignalling},
		rejoinOK: true,
	}
}

func (f *fakeSession) State() VoiceState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) OnStateChange(fn func(prev, next VoiceState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

func (f *fakeSession) OnError(fn func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errFns = append(f.errFns, fn)
}

func (f *fakeSession) WaitForStatus(ctx context.Context, status VoiceStatus, timeout time.Duration) error {
	f.mu.Lock()
	if f.state.Status == status {
		f.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	f.waiters = append(f.waiters, sessionWaiter{status: status, ch: ch})
	f.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-time.After(timeout):
		return errors.Errorf("timed out waiting for %s", status)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSession) Rejoin() bool {
	atomic.AddInt32(&f.rejoinCalls, 1)
	atomic.AddInt32(&f.attempts, 1)
	return f.rejoinOK
}

func (f *fakeSession) RejoinAttempts() int {
	return int(atomic.LoadInt32(&f.attempts))
}

func (f *fakeSession) Destroy() {
	atomic.AddInt32(&f.destroyCalls, 1)
	f.destroyOnce.Do(func() {
		f.push(VoiceState{Status: VoiceDestroyed})
	})
}

// push transitions the session and fires listeners and matching waiters.
func (f *fakeSession) push(next VoiceState) {
	f.mu.Lock()
	prev := f.state
	f.state = next
	listeners := append([]func(prev, next VoiceState){}, f.listeners...)
	var fire []chan struct{}
	remaining := f.waiters[:0]
	for _, w := range f.waiters {
		if w.status == next.Status {
			fire = append(fire, w.ch)
		} else {
			remaining = append(remaining, w)
		}
	}
	f.waiters = remaining
	f.mu.Unlock()

	for _, ch := range fire {
		close(ch)
	}
	for _, fn := range listeners {
		fn(prev, next)
	}
}

func (f *fakeSession) rejoins() int  { return int(atomic.LoadInt32(&f.rejoinCalls)) }
func (f *fakeSession) destroys() int { return int(atomic.LoadInt32(&f.destroyCalls)) }

// fakePlayer is a hand-driven AudioPlayer. Play records the resource and
// transitions to playing; tests call finish to simulate a track ending.
type fakePlayer struct {
	mu        sync.Mutex
	state     PlayerState
	listeners []func(prev, next PlayerState)
	errFns    []func(error)
	played    []Resource
	playErr   error

	forceStops int32
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{state: PlayerState{Status: PlayerIdle}}
}

func (f *fakePlayer) Play(res Resource) error {
	f.mu.Lock()
	if f.playErr != nil {
		err := f.playErr
		f.mu.Unlock()
		return err
	}
	f.played = append(f.played, res)
	f.mu.Unlock()
	f.transition(PlayerState{Status: PlayerPlaying, Resource: res})
	return nil
}

func (f *fakePlayer) Stop(force bool) {
	if force {
		atomic.AddInt32(&f.forceStops, 1)
	}
	f.mu.Lock()
	idle := f.state.Status == PlayerIdle
	f.mu.Unlock()
	if idle {
		return
	}
	f.transition(PlayerState{Status: PlayerIdle})
}

func (f *fakePlayer) State() PlayerState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakePlayer) OnStateChange(fn func(prev, next PlayerState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

func (f *fakePlayer) OnError(fn func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errFns = append(f.errFns, fn)
}

func (f *fakePlayer) transition(next PlayerState) {
	f.mu.Lock()
	prev := f.state
	f.state = next
	listeners := append([]func(prev, next PlayerState){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range listeners {
		fn(prev, next)
	}
}

// finish simulates the current track ending on its own.
func (f *fakePlayer) finish() { f.Stop(false) }

func (f *fakePlayer) playedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.played)
}

// fakeNotifier records every message in order.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Send(_ string, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}

func (f *fakeNotifier) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.messages))
	copy(out, f.messages)
	return out
}

// fakeConnector hands out a fixed session/player pair.
type fakeConnector struct {
	session *fakeSession
	player  *fakePlayer
	err     error
}

func (f *fakeConnector) Connect(_, _ string) (VoiceSession, AudioPlayer, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.session, f.player, nil
}

type fakeResource struct {
	track  *Track
	closed int32
}

func (r *fakeResource) Track() *Track { return r.track }
func (r *fakeResource) Close() error {
	atomic.AddInt32(&r.closed, 1)
	return nil
}

// goodTrack materializes successfully.
func goodTrack(title string) *Track {
	t := &Track{Title: title, RequestedBy: "tester", AddedAt: time.Now()}
	t.NewResource = func(tr *Track) (Resource, error) {
		return &fakeResource{track: tr}, nil
	}
	return t
}

// badTrack always fails to materialize with the given message.
func badTrack(title, msg string) *Track {
	t := &Track{Title: title, RequestedBy: "tester", AddedAt: time.Now()}
	t.NewResource = func(*Track) (Resource, error) {
		return nil, errors.New(msg)
	}
	return t
}
