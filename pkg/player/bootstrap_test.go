package player

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinReturnsExistingSubscriptionUnchanged(t *testing.T) {
	r := NewRegistry()
	existing := registrySub("g1")
	b := NewBootstrap(r, &fakeConnector{}, &fakeNotifier{})

	sub, err := b.Join(context.Background(), JoinRequest{GuildID: "g1"}, existing)
	require.NoError(t, err)
	assert.Same(t, existing, sub)
	assert.Equal(t, 0, r.Len(), "no re-join, no new registration")
}

func TestJoinRequiresVoiceChannel(t *testing.T) {
	b := NewBootstrap(NewRegistry(), &fakeConnector{}, &fakeNotifier{})

	sub, err := b.Join(context.Background(), JoinRequest{GuildID: "g1", TextChannelID: "t1"}, nil)
	assert.Nil(t, sub)
	assert.ErrorIs(t, err, ErrNoVoiceChannel)
}

func TestJoinConnectFailureReportsTimeout(t *testing.T) {
	conn := &fakeConnector{err: errors.New("gateway unavailable")}
	r := NewRegistry()
	b := NewBootstrap(r, conn, &fakeNotifier{})

	sub, err := b.Join(context.Background(), JoinRequest{
		GuildID:        "g1",
		VoiceChannelID: "v1",
	}, nil)
	assert.Nil(t, sub)
	assert.ErrorIs(t, err, ErrJoinTimeout)
	assert.Equal(t, 0, r.Len())
}

func TestJoinTimeoutKeepsRegistryEntry(t *testing.T) {
	fs := newFakeSession() // never becomes ready
	conn := &fakeConnector{session: fs, player: newFakePlayer()}
	r := NewRegistry()
	b := NewBootstrap(r, conn, &fakeNotifier{}, WithReadyTimeout(20*time.Millisecond))

	sub, err := b.Join(context.Background(), JoinRequest{
		GuildID:        "g1",
		VoiceChannelID: "v1",
		TextChannelID:  "t1",
	}, nil)
	assert.Nil(t, sub)
	assert.ErrorIs(t, err, ErrJoinTimeout)

	// The half-joined subscription stays registered so a later retry can
	// reuse it while its own reconnect machinery keeps working.
	assert.Equal(t, 1, r.Len())
}

func TestJoinSuccessNotifiesAndRegisters(t *testing.T) {
	fs := newFakeSession()
	fn := &fakeNotifier{}
	conn := &fakeConnector{session: fs, player: newFakePlayer()}
	r := NewRegistry()
	b := NewBootstrap(r, conn, fn, WithReadyTimeout(time.Second))

	go func() {
		time.Sleep(10 * time.Millisecond)
		fs.push(VoiceState{Status: VoiceReady})
	}()

	sub, err := b.Join(context.Background(), JoinRequest{
		GuildID:          "g1",
		VoiceChannelID:   "v1",
		VoiceChannelName: "General",
		TextChannelID:    "t1",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "g1", sub.GuildID())
	assert.Equal(t, "t1", sub.TextChannelID())
	assert.Equal(t, 1, r.Len())
	assert.Contains(t, fn.all(), "Joined **General**.")
}

func TestJoinedSubscriptionDeregistersOnDestroy(t *testing.T) {
	fs := newFakeSession()
	fs.push(VoiceState{Status: VoiceReady})
	conn := &fakeConnector{session: fs, player: newFakePlayer()}
	r := NewRegistry()
	b := NewBootstrap(r, conn, &fakeNotifier{})

	sub, err := b.Join(context.Background(), JoinRequest{
		GuildID:        "g1",
		VoiceChannelID: "v1",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	sub.Destroy()
	assert.Equal(t, 0, r.Len())
}
