package player

import "github.com/pkg/errors"

var (
	// ErrNoVoiceChannel means the requesting user is not in a voice channel.
	ErrNoVoiceChannel = errors.New("you must be in a voice channel, rejoin one and retry")

	// ErrJoinTimeout means the voice session did not become ready in time.
	ErrJoinTimeout = errors.New("could not join the voice channel within 20 seconds, retry later")
)
