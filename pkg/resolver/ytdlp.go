package resolver

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Result is a resolved search candidate.
type Result struct {
	URL      string
	Title    string
	Duration time.Duration
}

// Search runs a YouTube search and returns up to maxResults candidates in
// ranking order.
func (r *Resolver) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults < 1 {
		maxResults = 1
	}
	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--no-playlist",
		"--no-warnings",
		"--flat-playlist",
		"--print", "webpage_url",
		"--print", "title",
		"--print", "duration",
		fmt.Sprintf("ytsearch%d:%s", maxResults, query))

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	lines := splitNonEmpty(out.String())
	if len(lines) < 3 {
		if runErr != nil {
			return nil, errors.Wrapf(runErr, "search failed: %s", strings.TrimSpace(stderr.String()))
		}
		return nil, errors.Errorf("no results for %q", query)
	}

	var results []Result
	for i := 0; i+2 < len(lines); i += 3 {
		results = append(results, Result{
			URL:      lines[i],
			Title:    lines[i+1],
			Duration: parseSeconds(lines[i+2]),
		})
	}
	return results, nil
}

// searchFirst returns the top search candidate.
func (r *Resolver) searchFirst(ctx context.Context, query string) (Result, error) {
	r.log.Debug().Str("query", query).Msg("searching")
	results, err := r.Search(ctx, query, 1)
	if err != nil {
		return Result{}, err
	}
	return results[0], nil
}

// ytdlpMetadata extracts title and duration for an arbitrary stream URL.
func ytdlpMetadata(ctx context.Context, streamURL string) (string, time.Duration, error) {
	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--no-playlist",
		"--no-warnings",
		"--print", "title",
		"--print", "duration",
		streamURL)

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", 0, errors.Wrap(err, "extract metadata")
	}

	lines := splitNonEmpty(out.String())
	title := "Unknown Title"
	var duration time.Duration
	if len(lines) >= 1 && lines[0] != "" {
		title = lines[0]
	}
	if len(lines) >= 2 {
		duration = parseSeconds(lines[1])
	}
	return title, duration, nil
}

// Extraction strategies, most preferred first. YouTube serves different
// format sets to different player clients, so a failing strategy is retried
// with the next one rather than giving up.
var streamStrategies = [][]string{
	{"-f", "bestaudio[ext=m4a]/bestaudio[ext=webm]/bestaudio[ext=mp4]/bestaudio"},
	{"-f", "bestaudio", "--extractor-args", "youtube:player_client=android"},
	{"-f", "bestaudio", "--extractor-args", "youtube:player_client=web"},
	{"-f", "worst[ext=m4a]/worst"},
}

// ytdlpStreamURL extracts a direct audio stream URL, walking the strategy
// list until one yields a URL.
func ytdlpStreamURL(ctx context.Context, sourceURL string) (string, error) {
	var lastErr error
	for _, strategy := range streamStrategies {
		args := append([]string{"--no-playlist", "--no-warnings", "-g"}, strategy...)
		args = append(args, sourceURL)

		cmd := exec.CommandContext(ctx, "yt-dlp", args...)
		var out bytes.Buffer
		cmd.Stdout = &out
		if err := cmd.Run(); err != nil {
			lastErr = err
			continue
		}

		if lines := splitNonEmpty(out.String()); len(lines) > 0 {
			return lines[0], nil
		}
	}
	if lastErr != nil {
		return "", errors.Wrap(lastErr, "no stream url extracted")
	}
	return "", errors.New("no stream url extracted")
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func parseSeconds(s string) time.Duration {
	if s == "" || s == "None" || s == "NA" {
		return 0
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
