package resolver

import (
	"context"
	"net/http"
	"time"

	youtube "github.com/kkdai/youtube/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/katsuwo/eniwa/pkg/audio"
	"github.com/katsuwo/eniwa/pkg/player"
)

// Resolver turns user input (a URL or a search query) into playable tracks.
// Metadata is resolved eagerly so the track carries a real title; the stream
// URL is extracted lazily, at playback time, through the track's resource
// factory.
type Resolver struct {
	yt  *youtube.Client
	log zerolog.Logger
}

// New creates a resolver with a bounded-timeout YouTube client.
func New(log zerolog.Logger) *Resolver {
	return &Resolver{
		yt: &youtube.Client{
			HTTPClient: &http.Client{Timeout: 15 * time.Second},
		},
		log: log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve builds a track from a URL or search query.
func (r *Resolver) Resolve(ctx context.Context, input, requestedBy string) (*player.Track, error) {
	sourceURL := input
	var title string
	var duration time.Duration

	switch {
	case !IsURL(input):
		result, err := r.searchFirst(ctx, input)
		if err != nil {
			return nil, err
		}
		sourceURL, title, duration = result.URL, result.Title, result.Duration

	case IsYouTubeURL(input):
		video, err := r.yt.GetVideoContext(ctx, input)
		if err != nil {
			// The scraping client breaks from time to time; yt-dlp is the
			// fallback for metadata too.
			r.log.Warn().Err(err).Str("url", input).Msg("youtube client failed, falling back to yt-dlp")
			title, duration, err = ytdlpMetadata(ctx, input)
			if err != nil {
				return nil, errors.Wrap(err, "resolve video metadata")
			}
		} else {
			title, duration = video.Title, video.Duration
		}

	default:
		var err error
		title, duration, err = ytdlpMetadata(ctx, input)
		if err != nil {
			return nil, errors.Wrap(err, "resolve stream metadata")
		}
	}

	track := &player.Track{
		Title:       title,
		SourceURL:   sourceURL,
		RequestedBy: requestedBy,
		Duration:    duration,
		AddedAt:     time.Now(),
	}
	track.NewResource = r.openResource
	r.log.Debug().Str("title", title).Str("url", sourceURL).Msg("resolved track")
	return track, nil
}

// openResource extracts a direct stream URL for the track. Called from the
// queue drain at playback time; a failure here surfaces as a skipped track,
// not a dead subscription.
func (r *Resolver) openResource(t *player.Track) (player.Resource, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if IsYouTubeURL(t.SourceURL) {
		if streamURL, err := r.youtubeStreamURL(ctx, t.SourceURL); err == nil {
			return audio.NewResource(t, streamURL), nil
		} else {
			r.log.Warn().Err(err).Str("title", t.Title).Msg("youtube client stream extraction failed")
		}
	}

	streamURL, err := ytdlpStreamURL(ctx, t.SourceURL)
	if err != nil {
		return nil, err
	}
	return audio.NewResource(t, streamURL), nil
}

// youtubeStreamURL picks the best audio-only format via the youtube client.
func (r *Resolver) youtubeStreamURL(ctx context.Context, videoURL string) (string, error) {
	video, err := r.yt.GetVideoContext(ctx, videoURL)
	if err != nil {
		return "", errors.Wrap(err, "get video")
	}

	formats := video.Formats.Type("audio")
	if len(formats) == 0 {
		formats = video.Formats.WithAudioChannels()
	}
	if len(formats) == 0 {
		return "", errors.New("no audio formats available")
	}
	formats.Sort()

	streamURL, err := r.yt.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return "", errors.Wrap(err, "get stream url")
	}
	return streamURL, nil
}
