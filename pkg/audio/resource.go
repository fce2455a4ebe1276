package audio

import "github.com/katsuwo/eniwa/pkg/player"

// Resource is a streamable audio resource backed by a direct stream URL.
// The originating track rides along so state-change handlers can read its
// metadata.
type Resource struct {
	track     *player.Track
	streamURL string
}

// NewResource binds a resolved stream URL to its track.
func NewResource(track *player.Track, streamURL string) *Resource {
	return &Resource{track: track, streamURL: streamURL}
}

// Track returns the track this resource was materialized from.
func (r *Resource) Track() *player.Track { return r.track }

// StreamURL returns the direct audio stream URL.
func (r *Resource) StreamURL() string { return r.streamURL }

// Close releases the resource. Stream URLs hold no process-local state, so
// this is currently a no-op.
func (r *Resource) Close() error { return nil }
