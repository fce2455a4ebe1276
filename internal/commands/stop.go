package commands

import (
	"github.com/bwmarrin/discordgo"
)

// Stop tears down the guild's subscription: queue dropped, playback stopped,
// voice channel left.
func (c *Commands) Stop(s *discordgo.Session, m *discordgo.MessageCreate) {
	sub, ok := c.subscription(m.GuildID)
	if !ok {
		c.sendEmbed(s, m.ChannelID, "🔇 Nothing playing", "Not connected to a voice channel.", colorInfo)
		return
	}

	sub.Destroy()
	c.Presence.Default()
	c.sendEmbed(s, m.ChannelID, "⏹️ Stopped", "Playback stopped and queue cleared.", colorOK)
}
