package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/qepting91/reddit-media-downloader/internal/config"
)

// CollectionResult is the counter delta one collection contributed.
type CollectionResult struct {
	Name  string
	Stats Snapshot
}

// Session iterates the configured collections, owns the statistics
// object for the whole run and emits the end-of-run summary.
type Session struct {
	runner *Runner
	stats  *Stats
	opts   config.Options
	logger *slog.Logger
}

func NewSession(runner *Runner, stats *Stats, opts config.Options, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{runner: runner, stats: stats, opts: opts, logger: logger}
}

// Run processes every configured subreddit in order and returns the
// per-collection results for reporting. An interrupt stops the loop
// between collections; the summary still covers whatever finished.
func (s *Session) Run(ctx context.Context) []CollectionResult {
	start := time.Now()
	s.logger.Info("starting downloader", "subreddits", len(s.opts.Subreddits))

	var results []CollectionResult
	for _, name := range s.opts.Subreddits {
		if ctx.Err() != nil {
			s.logger.Info("run interrupted", "remaining", len(s.opts.Subreddits)-len(results))
			break
		}
		before := s.stats.Snapshot()
		if err := s.runner.Run(ctx, name); err != nil {
			s.logger.Error("error processing subreddit", "subreddit", name, "err", err)
			s.stats.AddError()
		}
		results = append(results, CollectionResult{Name: name, Stats: s.stats.Snapshot().Sub(before)})
	}

	s.printSummary(time.Since(start))
	return results
}

func (s *Session) printSummary(elapsed time.Duration) {
	totals := s.stats.Snapshot()

	s.logger.Info("download summary",
		"total_posts_processed", totals.Processed,
		"images_downloaded", totals.Images,
		"videos_downloaded", totals.Videos,
		"audio_merged", totals.Merged,
		"skipped", totals.Skipped,
		"errors", totals.Errors,
		"elapsed", elapsed.Round(10*time.Millisecond).String(),
	)

	header := color.New(color.FgHiCyan, color.Bold)
	line := color.New(color.FgWhite)
	errLine := line
	if totals.Errors > 0 {
		errLine = color.New(color.FgHiRed)
	}

	header.Println("Download Summary")
	line.Printf("  Total posts processed: %d\n", totals.Processed)
	line.Printf("  Images downloaded:     %d\n", totals.Images)
	line.Printf("  Videos downloaded:     %d\n", totals.Videos)
	line.Printf("  Audio merged:          %d\n", totals.Merged)
	line.Printf("  Files skipped:         %d\n", totals.Skipped)
	errLine.Printf("  Errors:                %d\n", totals.Errors)
	line.Printf("  Time elapsed:          %s\n", elapsed.Round(10*time.Millisecond))
}
