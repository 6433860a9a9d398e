// Package media resolves sibling audio streams for hosted videos and
// muxes them with the video file through ffmpeg.
package media

import (
	"context"
	"log/slog"
	"strings"

	"github.com/qepting91/reddit-media-downloader/internal/fetch"
)

// qualityMarker splits a v.redd.it playback URL into base + quality
// segment, e.g. https://v.redd.it/abc123/DASH_720.mp4.
const qualityMarker = "DASH_"

// audioPatterns are the candidate filename suffixes appended to the base
// URL, tried top to bottom; first successful fetch wins.
var audioPatterns = []string{
	"DASH_audio.mp4",
	"audio",
	"DASH_audio.m4a",
	"audio.mp4",
}

// AudioCandidate is one (pattern, derived URL) pair tried by the resolver.
type AudioCandidate struct {
	Pattern string
	URL     string
}

// AudioCandidates derives the ordered candidate audio URLs for a video
// playback URL.
func AudioCandidates(videoURL string) []AudioCandidate {
	base := audioBase(videoURL)
	candidates := make([]AudioCandidate, 0, len(audioPatterns))
	for _, p := range audioPatterns {
		candidates = append(candidates, AudioCandidate{Pattern: p, URL: base + p})
	}
	return candidates
}

func audioBase(videoURL string) string {
	if i := strings.Index(videoURL, qualityMarker); i >= 0 {
		return videoURL[:i]
	}
	if i := strings.LastIndex(videoURL, "/"); i >= 0 {
		return videoURL[:i+1]
	}
	return videoURL
}

// fetchClient is the slice of the fetcher the resolver needs.
type fetchClient interface {
	Fetch(ctx context.Context, url, destPath string) fetch.Result
	HeadExists(ctx context.Context, url string) bool
}

// AudioResolver probes candidate sibling-audio URLs and downloads the
// first one that exists.
type AudioResolver struct {
	fetcher fetchClient
	logger  *slog.Logger
}

func NewAudioResolver(fetcher fetchClient, logger *slog.Logger) *AudioResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &AudioResolver{fetcher: fetcher, logger: logger}
}

// Resolve tries each candidate in order: a cheap HEAD probe first, then
// the full download to destPath. It reports the winning candidate, or
// ok=false when no candidate yields an audio file. Exhausting all
// candidates is a degraded outcome for the caller, not an error.
func (r *AudioResolver) Resolve(ctx context.Context, videoURL, destPath string) (AudioCandidate, bool) {
	for _, cand := range AudioCandidates(videoURL) {
		if ctx.Err() != nil {
			return AudioCandidate{}, false
		}
		r.logger.Debug("trying audio candidate", "pattern", cand.Pattern, "url", cand.URL)

		if !r.fetcher.HeadExists(ctx, cand.URL) {
			continue
		}
		res := r.fetcher.Fetch(ctx, cand.URL, destPath)
		if res.Status == fetch.StatusDownloaded || res.Status == fetch.StatusSkippedExisting {
			r.logger.Info("found audio track", "pattern", cand.Pattern)
			return cand, true
		}
	}
	return AudioCandidate{}, false
}
