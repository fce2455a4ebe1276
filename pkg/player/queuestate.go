package player

type queueActionKind int

const (
	queueNone queueActionKind = iota
	// queueAnnounce announces the track that just started playing.
	queueAnnounce
	// queueDrain advances to the next queued track.
	queueDrain
	// queueFinished reports that the queue ran dry.
	queueFinished
)

func (k queueActionKind) String() string {
	switch k {
	case queueNone:
		return "none"
	case queueAnnounce:
		return "announce"
	case queueDrain:
		return "drain"
	case queueFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// nextQueueAction decides how a subscription reacts to an audio player state
// change. Pure, like nextConnAction, for the same reason.
func nextQueueAction(prev, next PlayerState, queueLen int) queueActionKind {
	switch {
	case next.Status == PlayerPlaying && prev.Status != PlayerPlaying:
		return queueAnnounce
	case next.Status == PlayerIdle && prev.Status != PlayerIdle:
		// Idle from a non-idle state: the previous track finished or
		// errored out.
		if queueLen == 0 {
			return queueFinished
		}
		return queueDrain
	}
	return queueNone
}
