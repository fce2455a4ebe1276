package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// NowPlaying shows the currently playing track.
func (c *Commands) NowPlaying(s *discordgo.Session, m *discordgo.MessageCreate) {
	sub, ok := c.subscription(m.GuildID)
	if !ok {
		c.sendEmbed(s, m.ChannelID, "🔇 Nothing playing", "No audio is currently playing.", colorInfo)
		return
	}

	now, playing := sub.NowPlaying()
	if !playing {
		c.sendEmbed(s, m.ChannelID, "🔇 Nothing playing", "No audio is currently playing.", colorInfo)
		return
	}

	c.sendEmbed(s, m.ChannelID, "🎵 Now playing",
		fmt.Sprintf("**%s** (%s) — requested by %s",
			now.Title, formatDuration(now.Duration), now.RequestedBy),
		colorInfo)
}
