package handlers

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/katsuwo/eniwa/internal/commands"
)

// MessageHandler dispatches prefix commands to the command layer.
type MessageHandler struct {
	Prefix   string
	Commands *commands.Commands
}

// Handle is registered as a discordgo MessageCreate handler.
func (h *MessageHandler) Handle(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		// Voice playback only makes sense in guilds.
		return
	}
	if !strings.HasPrefix(m.Content, h.Prefix) {
		return
	}

	args := strings.Fields(strings.TrimPrefix(m.Content, h.Prefix))
	if len(args) == 0 {
		return
	}
	command, rest := strings.ToLower(args[0]), args[1:]

	switch command {
	case "play", "p":
		h.Commands.Play(s, m, rest)
	case "skip", "next":
		h.Commands.Skip(s, m)
	case "queue", "q":
		h.Commands.Queue(s, m)
	case "nowplaying", "np":
		h.Commands.NowPlaying(s, m)
	case "clear":
		h.Commands.Clear(s, m)
	case "stop":
		h.Commands.Stop(s, m)
	case "leave", "disconnect":
		h.Commands.Leave(s, m)
	case "help":
		h.Commands.Help(s, m, h.Prefix)
	}
}
