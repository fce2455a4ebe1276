package player

import "time"

// Reconnect policy. Voice transports issue transient disconnects (channel
// moves, brief network blips) that self-heal, and permanent ones (kicked,
// session killed) that must not retry forever.
const (
	maxRejoinAttempts    = 5
	defaultRejoinBackoff = 5 * time.Second
	defaultProbeTimeout  = 5 * time.Second
	defaultReadyTimeout  = 20 * time.Second
)

type connActionKind int

const (
	connNone connActionKind = iota
	// connProbeMove waits briefly for the session to start reconnecting. If
	// it does, the disconnect was a channel move; if not, the bot was
	// removed from the channel and the session is destroyed.
	connProbeMove
	// connRejoin schedules a transport-level rejoin after Delay.
	connRejoin
	// connDestroy tears the session down.
	connDestroy
	// connStop terminates the subscription.
	connStop
	// connAwaitReady waits for the session to become ready, destroying it on
	// timeout so it cannot linger in a half-connected state.
	connAwaitReady
)

func (k connActionKind) String() string {
	switch k {
	case connNone:
		return "none"
	case connProbeMove:
		return "probe-move"
	case connRejoin:
		return "rejoin"
	case connDestroy:
		return "destroy"
	case connStop:
		return "stop"
	case connAwaitReady:
		return "await-ready"
	default:
		return "unknown"
	}
}

type connAction struct {
	Kind  connActionKind
	Delay time.Duration
}

// nextConnAction decides how a subscription reacts to a voice state change.
// It is a pure function of the observed state, the session's rejoin attempt
// counter and whether a ready-wait is already in flight, so the reconnect
// policy can be tested without a live transport.
func nextConnAction(next VoiceState, rejoinAttempts int, readyWaiting bool, backoffStep time.Duration) connAction {
	switch next.Status {
	case VoiceDestroyed:
		return connAction{Kind: connStop}

	case VoiceDisconnected:
		if next.Reason == DisconnectWebsocketClose && next.CloseCode == CloseCodeDisconnected {
			// Ambiguous: either moved to another channel or kicked. The
			// subsequent state is the only way to tell them apart.
			return connAction{Kind: connProbeMove}
		}
		if rejoinAttempts < maxRejoinAttempts {
			return connAction{
				Kind:  connRejoin,
				Delay: time.Duration(rejoinAttempts+1) * backoffStep,
			}
		}
		return connAction{Kind: connDestroy}

	case VoiceSignalling, VoiceConnecting:
		if !readyWaiting {
			return connAction{Kind: connAwaitReady}
		}
	}
	return connAction{Kind: connNone}
}
