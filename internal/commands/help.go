package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Help lists the available commands.
func (c *Commands) Help(s *discordgo.Session, m *discordgo.MessageCreate, prefix string) {
	help := fmt.Sprintf(
		"`%[1]splay <url or search>` — queue a track\n"+
			"`%[1]sskip` — skip the current track\n"+
			"`%[1]squeue` — show the queue\n"+
			"`%[1]snowplaying` — show the current track\n"+
			"`%[1]sclear` — drop the pending queue\n"+
			"`%[1]sstop` — stop playback and clear the queue\n"+
			"`%[1]sleave` — leave the voice channel",
		prefix)
	c.sendEmbed(s, m.ChannelID, "📖 Commands", help, colorInfo)
}
