package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const queueListLimit = 10

// Queue shows the current track and the pending queue.
func (c *Commands) Queue(s *discordgo.Session, m *discordgo.MessageCreate) {
	sub, ok := c.subscription(m.GuildID)
	if !ok {
		c.sendEmbed(s, m.ChannelID, "📭 Queue", "The queue is empty.", colorInfo)
		return
	}

	var b strings.Builder
	if now, playing := sub.NowPlaying(); playing {
		fmt.Fprintf(&b, "▶️ **%s** (%s)\n\n", now.Title, formatDuration(now.Duration))
	}

	pending := sub.Pending()
	if len(pending) == 0 && b.Len() == 0 {
		c.sendEmbed(s, m.ChannelID, "📭 Queue", "The queue is empty.", colorInfo)
		return
	}

	for i, t := range pending {
		if i == queueListLimit {
			fmt.Fprintf(&b, "… and %d more\n", len(pending)-queueListLimit)
			break
		}
		fmt.Fprintf(&b, "%d. **%s** (%s) — requested by %s\n",
			i+1, t.Title, formatDuration(t.Duration), t.RequestedBy)
	}

	c.sendEmbed(s, m.ChannelID, "🎶 Queue", b.String(), colorInfo)
}
