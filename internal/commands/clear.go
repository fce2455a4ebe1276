package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Clear drops the pending queue, leaving the current track playing.
func (c *Commands) Clear(s *discordgo.Session, m *discordgo.MessageCreate) {
	sub, ok := c.subscription(m.GuildID)
	if !ok {
		c.sendEmbed(s, m.ChannelID, "📭 Queue", "The queue is already empty.", colorInfo)
		return
	}

	dropped := sub.ClearPending()
	c.sendEmbed(s, m.ChannelID, "🧹 Cleared",
		fmt.Sprintf("Dropped %d queued track(s).", dropped), colorOK)
}
