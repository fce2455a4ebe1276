package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/katsuwo/eniwa/pkg/player"
)

// Play resolves the input to a track, joins the caller's voice channel if
// needed and enqueues it.
func (c *Commands) Play(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		c.sendEmbed(s, m.ChannelID, "❌ Usage", "Provide a YouTube URL or a search query.", colorError)
		return
	}

	ctx, cancel := commandContext()
	defer cancel()

	existing, _ := c.subscription(m.GuildID)
	voiceChannelID, voiceChannelName := c.userVoiceChannel(s, m.GuildID, m.Author.ID)

	sub, err := c.Bootstrap.Join(ctx, player.JoinRequest{
		GuildID:          m.GuildID,
		VoiceChannelID:   voiceChannelID,
		VoiceChannelName: voiceChannelName,
		TextChannelID:    m.ChannelID,
		RequestedBy:      m.Author.Username,
	}, existing)
	if err != nil {
		c.sendEmbed(s, m.ChannelID, "❌ Could not join", err.Error(), colorError)
		return
	}

	input := strings.Join(args, " ")
	track, err := c.Resolver.Resolve(ctx, input, m.Author.Username)
	if err != nil {
		c.Log.Warn().Err(err).Str("input", input).Msg("track resolution failed")
		c.sendEmbed(s, m.ChannelID, "❌ Not found", "Could not resolve that to a playable track.", colorError)
		return
	}

	sub.Enqueue(track)
	position := len(sub.Pending()) + 1
	c.sendEmbed(s, m.ChannelID, "🎵 Added to queue",
		fmt.Sprintf("**%s** (%s) — position %d", track.Title, formatDuration(track.Duration), position),
		colorOK)
}
