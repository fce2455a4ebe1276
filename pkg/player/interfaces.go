package player

import (
	"context"
	"time"
)

// VoiceStatus represents the observable state of a realtime voice session.
type VoiceStatus int

const (
	VoiceSignalling VoiceStatus = iota
	VoiceConnecting
	VoiceReady
	VoiceDisconnected
	VoiceDestroyed
)

func (s VoiceStatus) String() string {
	switch s {
	case VoiceSignalling:
		return "signalling"
	case VoiceConnecting:
		return "connecting"
	case VoiceReady:
		return "ready"
	case VoiceDisconnected:
		return "disconnected"
	case VoiceDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// DisconnectReason classifies why a voice session dropped.
type DisconnectReason int

const (
	DisconnectUnknown DisconnectReason = iota
	// DisconnectWebsocketClose means the voice gateway closed the connection
	// with a protocol close code.
	DisconnectWebsocketClose
)

// CloseCodeDisconnected is the voice gateway close code sent both when the
// bot is moved to another channel and when it is kicked. The two cases are
// indistinguishable at close time; see the reconnect state machine.
const CloseCodeDisconnected = 4014

// VoiceState is a snapshot of a voice session's connection state.
type VoiceState struct {
	Status    VoiceStatus
	Reason    DisconnectReason
	CloseCode int
}

// VoiceSession is the realtime voice transport owned by a Subscription.
// Implementations must deliver state changes one at a time, in order.
type VoiceSession interface {
	State() VoiceState
	OnStateChange(func(prev, next VoiceState))
	OnError(func(error))

	// WaitForStatus blocks until the session reaches the given status or the
	// timeout elapses.
	WaitForStatus(ctx context.Context, status VoiceStatus, timeout time.Duration) error

	// Rejoin reattempts the existing session without a full teardown.
	Rejoin() bool

	// RejoinAttempts returns how many rejoins this session has attempted.
	RejoinAttempts() int

	// Destroy tears the session down permanently. Implementations must emit
	// a VoiceDestroyed state change exactly once.
	Destroy()
}

// PlayerStatus represents the observable state of an audio player.
type PlayerStatus int

const (
	PlayerIdle PlayerStatus = iota
	PlayerBuffering
	PlayerPlaying
)

func (s PlayerStatus) String() string {
	switch s {
	case PlayerIdle:
		return "idle"
	case PlayerBuffering:
		return "buffering"
	case PlayerPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// PlayerState is a snapshot of an audio player's state. Resource is non-nil
// while a resource is loaded.
type PlayerState struct {
	Status   PlayerStatus
	Resource Resource
}

// AudioPlayer plays one audio resource at a time into a voice session.
type AudioPlayer interface {
	Play(Resource) error
	Stop(force bool)
	State() PlayerState
	OnStateChange(func(prev, next PlayerState))
	OnError(func(error))
}

// Resource is a streamable audio resource with its originating track attached.
type Resource interface {
	Track() *Track
	Close() error
}

// Connector establishes a voice session for a guild channel and the audio
// player bound to it.
type Connector interface {
	Connect(guildID, channelID string) (VoiceSession, AudioPlayer, error)
}

// Notifier delivers user-facing text notifications. Send failures are the
// implementation's problem: they are logged, never propagated.
type Notifier interface {
	Send(channelID, message string)
}

// MetricsCollector receives playback lifecycle counters.
type MetricsCollector interface {
	SubscriptionOpened()
	SubscriptionClosed()
	TrackStarted()
	TrackFailed()
	RejoinScheduled()
	SessionDestroyed()
}

type nopMetrics struct{}

func (nopMetrics) SubscriptionOpened() {}
func (nopMetrics) SubscriptionClosed() {}
func (nopMetrics) TrackStarted()       {}
func (nopMetrics) TrackFailed()        {}
func (nopMetrics) RejoinScheduled()    {}
func (nopMetrics) SessionDestroyed()   {}
