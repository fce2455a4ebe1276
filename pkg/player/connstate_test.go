package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextConnAction(t *testing.T) {
	wsClose4014 := VoiceState{
		Status:    VoiceDisconnected,
		Reason:    DisconnectWebsocketClose,
		CloseCode: CloseCodeDisconnected,
	}

	tests := []struct {
		name         string
		next         VoiceState
		attempts     int
		readyWaiting bool
		want         connActionKind
		wantDelay    time.Duration
	}{
		{
			name: "destroyed terminates",
			next: VoiceState{Status: VoiceDestroyed},
			want: connStop,
		},
		{
			name: "ambiguous close code probes for a channel move",
			next: wsClose4014,
			want: connProbeMove,
		},
		{
			name: "4014 without a websocket close is an ordinary disconnect",
			next: VoiceState{Status: VoiceDisconnected, Reason: DisconnectUnknown, CloseCode: CloseCodeDisconnected},
			want: connRejoin, wantDelay: 5 * time.Second,
		},
		{
			name: "disconnect over the retry budget destroys",
			next: VoiceState{Status: VoiceDisconnected}, attempts: maxRejoinAttempts,
			want: connDestroy,
		},
		{
			name: "signalling starts a ready wait",
			next: VoiceState{Status: VoiceSignalling},
			want: connAwaitReady,
		},
		{
			name: "connecting starts a ready wait",
			next: VoiceState{Status: VoiceConnecting},
			want: connAwaitReady,
		},
		{
			name: "no overlapping ready waits",
			next: VoiceState{Status: VoiceConnecting}, readyWaiting: true,
			want: connNone,
		},
		{
			name: "ready needs no reaction",
			next: VoiceState{Status: VoiceReady},
			want: connNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextConnAction(tt.next, tt.attempts, tt.readyWaiting, defaultRejoinBackoff)
			assert.Equal(t, tt.want, got.Kind)
			if tt.wantDelay > 0 {
				assert.Equal(t, tt.wantDelay, got.Delay)
			}
		})
	}
}

func TestRejoinBackoffIsLinear(t *testing.T) {
	disconnected := VoiceState{Status: VoiceDisconnected}

	// Attempts 0..4 back off 5s, 10s, ... 25s; the 6th disconnect destroys.
	for attempts := 0; attempts < maxRejoinAttempts; attempts++ {
		got := nextConnAction(disconnected, attempts, false, defaultRejoinBackoff)
		assert.Equal(t, connRejoin, got.Kind)
		assert.Equal(t, time.Duration(attempts+1)*5*time.Second, got.Delay)
	}
	got := nextConnAction(disconnected, maxRejoinAttempts, false, defaultRejoinBackoff)
	assert.Equal(t, connDestroy, got.Kind)
}
