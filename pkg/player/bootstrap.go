package player

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// JoinRequest carries everything the bootstrap needs to bind a subscription
// to an interaction: where the caller is, where to play and where to talk.
type JoinRequest struct {
	GuildID        string
	VoiceChannelID string
	// VoiceChannelName is the display name used in the joined notification.
	VoiceChannelName string
	TextChannelID    string
	RequestedBy      string
}

// Bootstrap resolves or creates the subscription for an interaction and
// waits for its transport to become usable.
type Bootstrap struct {
	registry     *Registry
	connector    Connector
	notifier     Notifier
	metrics      MetricsCollector
	log          zerolog.Logger
	readyTimeout time.Duration
	subOpts      []Option
}

// BootstrapOption configures a Bootstrap.
type BootstrapOption func(*Bootstrap)

// WithBootstrapLogger sets the bootstrap's logger.
func WithBootstrapLogger(log zerolog.Logger) BootstrapOption {
	return func(b *Bootstrap) { b.log = log }
}

// WithBootstrapMetrics sets the metrics collector passed to subscriptions.
func WithBootstrapMetrics(m MetricsCollector) BootstrapOption {
	return func(b *Bootstrap) { b.metrics = m }
}

// WithReadyTimeout overrides how long Join waits for the session to become
// ready.
func WithReadyTimeout(d time.Duration) BootstrapOption {
	return func(b *Bootstrap) {
		if d > 0 {
			b.readyTimeout = d
		}
	}
}

// WithSubscriptionOptions appends options applied to every subscription the
// bootstrap creates.
func WithSubscriptionOptions(opts ...Option) BootstrapOption {
	return func(b *Bootstrap) { b.subOpts = append(b.subOpts, opts...) }
}

// NewBootstrap creates a session bootstrap over the given registry and
// transport connector.
func NewBootstrap(registry *Registry, connector Connector, notifier Notifier, opts ...BootstrapOption) *Bootstrap {
	b := &Bootstrap{
		registry:     registry,
		connector:    connector,
		notifier:     notifier,
		metrics:      nopMetrics{},
		log:          zerolog.Nop(),
		readyTimeout: defaultReadyTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Join resolves the subscription for an interaction. A non-nil existing
// subscription is returned unchanged without re-joining. Otherwise the
// caller must occupy a voice channel; Join connects to it, registers the new
// subscription and waits for the transport to become ready.
//
// On timeout the registry entry is deliberately left in place: the
// subscription's own reconnect machinery is already running, and a later
// retry can reuse it. Only ErrNoVoiceChannel and ErrJoinTimeout are ever
// returned to the caller.
func (b *Bootstrap) Join(ctx context.Context, req JoinRequest, existing *Subscription) (*Subscription, error) {
	if existing != nil {
		return existing, nil
	}
	if req.VoiceChannelID == "" {
		return nil, ErrNoVoiceChannel
	}

	session, audio, err := b.connector.Connect(req.GuildID, req.VoiceChannelID)
	if err != nil {
		b.log.Error().Err(err).Str("guild", req.GuildID).Str("channel", req.VoiceChannelID).Msg("voice connect failed")
		return nil, ErrJoinTimeout
	}

	opts := append([]Option{
		WithNotifier(b.notifier),
		WithMetrics(b.metrics),
		WithLogger(b.log),
		WithOnStop(func(s *Subscription) { b.registry.Delete(s.GuildID()) }),
	}, b.subOpts...)

	sub := NewSubscription(req.GuildID, req.TextChannelID, req.VoiceChannelID, session, audio, opts...)
	b.registry.Store(sub)

	if err := session.WaitForStatus(ctx, VoiceReady, b.readyTimeout); err != nil {
		b.log.Warn().Err(err).Str("guild", req.GuildID).Msg("voice session not ready in time")
		return nil, ErrJoinTimeout
	}

	b.log.Info().Str("guild", req.GuildID).Str("channel", req.VoiceChannelID).Msg("joined voice channel")
	b.notifier.Send(req.TextChannelID, fmt.Sprintf("Joined **%s**.", req.VoiceChannelName))
	return sub, nil
}
