package player

import (
	"time"

	"github.com/pkg/errors"
)

// ResourceFunc materializes a streamable resource for a track. It is
// invoked at playback time, not at enqueue time, so a track that has gone
// stale fails here rather than at Add.
type ResourceFunc func(*Track) (Resource, error)

// Track is an inert descriptor of a playable item. Tracks are immutable
// after creation and are dropped once consumed or on queue clear.
type Track struct {
	Title       string
	SourceURL   string
	RequestedBy string
	Duration    time.Duration
	AddedAt     time.Time

	// NewResource produces the streamable resource for this track.
	NewResource ResourceFunc
}

// CreateResource materializes the track into a playable resource.
func (t *Track) CreateResource() (Resource, error) {
	if t.NewResource == nil {
		return nil, errors.New("track has no resource factory")
	}
	res, err := t.NewResource(t)
	if err != nil {
		return nil, errors.Wrapf(err, "create resource for %q", t.Title)
	}
	return res, nil
}
