package commands

import (
	"github.com/bwmarrin/discordgo"
)

// Leave disconnects from the voice channel. Same teardown as Stop; the
// wording is just friendlier when nothing was playing.
func (c *Commands) Leave(s *discordgo.Session, m *discordgo.MessageCreate) {
	sub, ok := c.subscription(m.GuildID)
	if !ok {
		c.sendEmbed(s, m.ChannelID, "👋 Not connected", "I'm not in a voice channel here.", colorInfo)
		return
	}

	sub.Destroy()
	c.Presence.Default()
	c.sendEmbed(s, m.ChannelID, "👋 Left", "Disconnected from the voice channel.", colorOK)
}
