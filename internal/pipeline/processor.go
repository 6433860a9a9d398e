package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/qepting91/reddit-media-downloader/internal/config"
	"github.com/qepting91/reddit-media-downloader/internal/domain"
	"github.com/qepting91/reddit-media-downloader/internal/fetch"
	"github.com/qepting91/reddit-media-downloader/internal/media"
	"github.com/qepting91/reddit-media-downloader/internal/storage"
)

// fetcher is the slice of the downloader the processor depends on.
type fetcher interface {
	Fetch(ctx context.Context, url, destPath string) fetch.Result
}

// audioResolver locates and downloads a sibling audio stream.
type audioResolver interface {
	Resolve(ctx context.Context, videoURL, destPath string) (media.AudioCandidate, bool)
}

// Processor runs the per-post state machine:
// filter → classify → fetch → resolve audio → merge → cleanup.
type Processor struct {
	opts     config.Options
	fetcher  fetcher
	resolver audioResolver
	merger   media.Merger
	stats    *Stats
	logger   *slog.Logger
}

func NewProcessor(opts config.Options, f fetcher, r audioResolver, m media.Merger, stats *Stats, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{opts: opts, fetcher: f, resolver: r, merger: m, stats: stats, logger: logger}
}

// Process handles one post. Faults are contained here: nothing that goes
// wrong with one post ever unwinds into a sibling post or the runner.
func (p *Processor) Process(ctx context.Context, post domain.Post, dirs storage.CollectionDirs) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic while processing post", "id", post.ID, "panic", r)
			p.stats.AddError()
		}
	}()

	if post.Score < p.opts.MinScore {
		p.logger.Debug("skipping post below minimum score", "id", post.ID, "score", post.Score)
		return
	}

	p.logger.Debug("processing post", "id", post.ID, "title", post.Title, "url", post.URL)

	switch domain.Classify(post) {
	case domain.KindImage:
		p.processImage(ctx, post, dirs)
	case domain.KindVideo:
		p.processVideo(ctx, post, dirs)
	case domain.KindGallery:
		// Expansion into per-item fetches is a future extension point.
		p.logger.Info("gallery post detected", "id", post.ID)
	default:
		p.logger.Debug("unsupported media type", "id", post.ID, "url", post.URL)
	}

	p.stats.AddProcessed()
}

// fileStem builds the [<score>_]<sanitized-title> part of a filename.
func (p *Processor) fileStem(post domain.Post) string {
	name := storage.SanitizeFilename(post.Title, p.opts.MaxFilenameLength, p.opts.ReplaceSpaces)
	if p.opts.IncludeScore {
		name = fmt.Sprintf("%d_%s", post.Score, name)
	}
	return name
}

func (p *Processor) processImage(ctx context.Context, post domain.Post, dirs storage.CollectionDirs) {
	if !p.opts.DownloadImages {
		return
	}
	dest := filepath.Join(dirs.Images, p.fileStem(post)+path.Ext(post.URL))
	res := p.fetcher.Fetch(ctx, post.URL, dest)
	if res.Status == fetch.StatusDownloaded {
		p.stats.AddImage()
	}
	// Other outcomes are already accounted by the fetcher's own counters.
}

func (p *Processor) processVideo(ctx context.Context, post domain.Post, dirs storage.CollectionDirs) {
	if !p.opts.DownloadVideos {
		return
	}
	if post.Video == nil || post.Video.FallbackURL == "" {
		p.logger.Error("video post has no playable source", "id", post.ID)
		p.stats.AddError()
		return
	}

	stem := p.fileStem(post)
	videoDest := filepath.Join(dirs.Videos, stem+".mp4")

	res := p.fetcher.Fetch(ctx, post.Video.FallbackURL, videoDest)
	switch res.Status {
	case fetch.StatusDownloaded:
		p.stats.AddVideo()
	case fetch.StatusSkippedExisting:
		// Already on disk; still eligible for audio merging below.
	default:
		return
	}

	if !p.opts.DownloadAudio || !p.merger.Available() || !post.Video.HasAudio {
		return
	}

	audioDest := filepath.Join(dirs.Videos, stem+"_audio.mp4")
	cand, ok := p.resolver.Resolve(ctx, post.Video.FallbackURL, audioDest)
	if !ok {
		// Degraded outcome, not an error.
		p.logger.Warn("no suitable audio found for video", "id", post.ID, "url", post.Video.FallbackURL)
		return
	}

	mergedDest := filepath.Join(dirs.Videos, stem+"_with_audio.mp4")
	mres := p.merger.Merge(ctx, videoDest, audioDest, mergedDest)
	switch mres.Status {
	case media.MergeSuccess:
		p.logger.Info("merged audio and video", "id", post.ID, "pattern", cand.Pattern, "output", mergedDest)
		p.stats.AddMerged()
		if p.opts.CleanupAfterMerge {
			_ = os.Remove(audioDest)
			if !p.opts.KeepVideoOnly {
				_ = os.Remove(videoDest)
			}
		}
	case media.MergeToolUnavailable:
		p.logger.Warn("cannot merge audio: toolchain unavailable", "id", post.ID)
	default:
		p.logger.Error("failed to merge audio and video", "id", post.ID, "diagnostic", mres.Diagnostic)
	}
}
