package notify

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const embedColor = 0x5865f2

// Notifier sends user-facing embed messages to text channels. Sends are
// rate-limited and failures are logged, never propagated: a dead text
// channel must not affect playback.
type Notifier struct {
	dg      *discordgo.Session
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New creates a notifier over an open Discord session.
func New(dg *discordgo.Session, log zerolog.Logger) *Notifier {
	return &Notifier{
		dg: dg,
		// Discord allows ~5 messages per 5 seconds per channel; stay under.
		limiter: rate.NewLimiter(rate.Every(time.Second), 4),
		log:     log.With().Str("component", "notify").Logger(),
	}
}

// Send delivers a message to a channel, best effort.
func (n *Notifier) Send(channelID, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := n.limiter.Wait(ctx); err != nil {
		n.log.Warn().Err(err).Str("channel", channelID).Msg("dropping notification, rate limiter wait expired")
		return
	}

	_, err := n.dg.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Description: message,
		Color:       embedColor,
	})
	if err != nil {
		n.log.Warn().Err(err).Str("channel", channelID).Msg("notification send failed")
	}
}
