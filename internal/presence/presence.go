package presence

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Manager updates the bot's presence line.
type Manager struct {
	dg  *discordgo.Session
	log zerolog.Logger
}

// NewManager creates a presence manager over an open Discord session.
func NewManager(dg *discordgo.Session, log zerolog.Logger) *Manager {
	return &Manager{dg: dg, log: log.With().Str("component", "presence").Logger()}
}

// NowPlaying shows the given track title as a listening activity.
func (m *Manager) NowPlaying(title string) {
	m.update(&discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{{
			Name:  "to",
			Type:  discordgo.ActivityTypeListening,
			State: title,
		}},
	})
}

// Default shows the resting presence.
func (m *Manager) Default() {
	guilds := len(m.dg.State.Guilds)
	m.update(&discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{{
			Name: fmt.Sprintf("music in %d servers", guilds),
			Type: discordgo.ActivityTypeListening,
		}},
	})
}

func (m *Manager) update(data *discordgo.UpdateStatusData) {
	if err := m.dg.UpdateStatusComplex(*data); err != nil {
		m.log.Warn().Err(err).Msg("presence update failed")
	}
}
