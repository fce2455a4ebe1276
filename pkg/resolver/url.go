package resolver

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// IsURL reports whether the input looks like a URL rather than a search
// query.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "www.") || IsYouTubeURL(s)
}

// IsYouTubeURL reports whether a URL appears to be from YouTube.
func IsYouTubeURL(s string) bool {
	return strings.Contains(s, "youtube.com") || strings.Contains(s, "youtu.be")
}

// ExtractVideoID pulls the 11-character video ID out of a YouTube URL.
// Returns the empty string when no ID can be found.
func ExtractVideoID(youtubeURL string) string {
	if strings.Contains(youtubeURL, "youtube.com") {
		parsed, err := url.Parse(youtubeURL)
		if err != nil {
			return ""
		}
		if id := parsed.Query().Get("v"); id != "" {
			return id
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
			if rest, ok := strings.CutPrefix(parsed.Path, prefix); ok {
				return strings.SplitN(rest, "/", 2)[0]
			}
		}
		return ""
	}

	if strings.Contains(youtubeURL, "youtu.be") {
		parsed, err := url.Parse(youtubeURL)
		if err != nil {
			return ""
		}
		id := strings.TrimPrefix(parsed.Path, "/")
		if videoIDPattern.MatchString(id) {
			return id
		}
	}
	return ""
}
