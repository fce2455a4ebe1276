package commands

import (
	"github.com/bwmarrin/discordgo"
)

// Skip stops the current track; the queue advances on its own through the
// player's idle transition.
func (c *Commands) Skip(s *discordgo.Session, m *discordgo.MessageCreate) {
	sub, ok := c.subscription(m.GuildID)
	if !ok {
		c.sendEmbed(s, m.ChannelID, "🔇 Nothing playing", "Nothing to skip.", colorInfo)
		return
	}
	if _, playing := sub.NowPlaying(); !playing {
		c.sendEmbed(s, m.ChannelID, "🔇 Nothing playing", "Nothing to skip.", colorInfo)
		return
	}

	sub.Skip()
	c.sendEmbed(s, m.ChannelID, "⏭️ Skipped", "Moving on.", colorOK)
}
