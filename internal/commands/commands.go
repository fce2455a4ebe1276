package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/katsuwo/eniwa/internal/notify"
	"github.com/katsuwo/eniwa/internal/presence"
	"github.com/katsuwo/eniwa/pkg/player"
	"github.com/katsuwo/eniwa/pkg/resolver"
)

const (
	colorOK    = 0x00ff00
	colorError = 0xff0000
	colorInfo  = 0x5865f2
)

// Commands is the message command front end. It is thin on purpose: all
// playback logic lives behind the registry, bootstrap and resolver it holds.
type Commands struct {
	Registry  *player.Registry
	Bootstrap *player.Bootstrap
	Resolver  *resolver.Resolver
	Notifier  *notify.Notifier
	Presence  *presence.Manager
	Log       zerolog.Logger
}

// sendEmbed posts a titled embed reply.
func (c *Commands) sendEmbed(s *discordgo.Session, channelID, title, description string, color int) {
	_, err := s.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
	})
	if err != nil {
		c.Log.Warn().Err(err).Str("channel", channelID).Msg("embed send failed")
	}
}

// userVoiceChannel finds the voice channel the user currently occupies.
// Returns empty IDs when they are not in one.
func (c *Commands) userVoiceChannel(s *discordgo.Session, guildID, userID string) (channelID, channelName string) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		c.Log.Warn().Err(err).Str("guild", guildID).Msg("guild not in state cache")
		return "", ""
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			channelID = vs.ChannelID
			break
		}
	}
	if channelID == "" {
		return "", ""
	}

	channelName = "voice channel"
	if ch, err := s.State.Channel(channelID); err == nil {
		channelName = ch.Name
	}
	return channelID, channelName
}

// subscription looks up the guild's active subscription.
func (c *Commands) subscription(guildID string) (*player.Subscription, bool) {
	return c.Registry.Get(guildID)
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "live"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
