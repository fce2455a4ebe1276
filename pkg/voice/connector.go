package voice

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/katsuwo/eniwa/pkg/audio"
	"github.com/katsuwo/eniwa/pkg/player"
)

// Connector establishes discordgo-backed voice sessions with their audio
// players attached.
type Connector struct {
	dg  *discordgo.Session
	log zerolog.Logger
}

// NewConnector creates a connector over an open Discord session.
func NewConnector(dg *discordgo.Session, log zerolog.Logger) *Connector {
	return &Connector{dg: dg, log: log}
}

// Connect starts a voice session for the given guild channel and binds a
// fresh audio player to it. The join itself proceeds asynchronously; callers
// wait for readiness through the session's state surface.
func (c *Connector) Connect(guildID, channelID string) (player.VoiceSession, player.AudioPlayer, error) {
	session := newSession(c.dg, guildID, channelID, c.log)
	p := audio.NewPlayer(session, c.log)
	go session.connect()
	return session, p, nil
}
