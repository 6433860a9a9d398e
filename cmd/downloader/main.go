package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/qepting91/reddit-media-downloader/internal/config"
	"github.com/qepting91/reddit-media-downloader/internal/feed"
	"github.com/qepting91/reddit-media-downloader/internal/fetch"
	"github.com/qepting91/reddit-media-downloader/internal/ingest"
	"github.com/qepting91/reddit-media-downloader/internal/media"
	"github.com/qepting91/reddit-media-downloader/internal/pipeline"
	"github.com/qepting91/reddit-media-downloader/internal/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := parseFlags()
	if err != nil {
		return err
	}

	// 1. Setup
	godotenv.Load()
	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(opts)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	// 2. Feed client
	feedClient, err := feed.New(creds)
	if err != nil {
		return err
	}
	logger.Info("feed initialized", "mode", creds.FeedMode)

	// 3. Graceful shutdown on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Pipeline wiring
	stats := pipeline.NewStats()
	fetcher := fetch.New(&http.Client{}, stats, fetch.Config{
		SizeCeiling: opts.MaxFileSizeBytes(),
		Overwrite:   opts.Overwrite,
	}, logger)
	resolver := media.NewAudioResolver(fetcher, logger)

	merger := media.NewFFmpegMerger("", logger)
	if opts.DownloadAudio && !merger.Available() {
		logger.Warn("ffmpeg not found; audio merging is disabled for this run")
	}

	processor := pipeline.NewProcessor(opts, fetcher, resolver, merger, stats, logger)
	runner := pipeline.NewRunner(feedClient, processor, opts, logger)
	session := pipeline.NewSession(runner, stats, opts, logger)

	// 5. Run
	results := session.Run(ctx)

	if opts.ReportPath != "" {
		if err := report.Write(opts.ReportPath, results); err != nil {
			logger.Error("failed to write report", "path", opts.ReportPath, "err", err)
		} else {
			logger.Info("report written", "path", opts.ReportPath)
		}
	}
	return nil
}

func parseFlags() (config.Options, error) {
	opts := config.Defaults()

	var subreddits, listFile string
	flag.StringVar(&subreddits, "s", "", "comma-separated subreddit names")
	flag.StringVar(&listFile, "f", "", "path to a file with one subreddit per line")
	flag.StringVar(&opts.OutputDir, "o", opts.OutputDir, "base directory for downloaded files")
	flag.StringVar(&opts.Sort, "sort", opts.Sort, "post sort: hot, new or top")
	flag.StringVar(&opts.TimeFilter, "time-filter", opts.TimeFilter, "time filter for top sort: hour, day, week, month, year or all")
	flag.IntVar(&opts.Limit, "limit", opts.Limit, "maximum posts per subreddit")
	flag.IntVar(&opts.MinScore, "min-score", opts.MinScore, "minimum score required to download a post")

	noImages := flag.Bool("no-images", false, "skip downloading images")
	noVideos := flag.Bool("no-videos", false, "skip downloading videos")
	flag.BoolVar(&opts.DownloadAudio, "download-audio", false, "download and merge audio for videos (requires ffmpeg)")
	flag.BoolVar(&opts.KeepVideoOnly, "keep-video-only", false, "keep the video-only file after merging with audio")
	noCleanup := flag.Bool("no-cleanup", false, "keep temporary audio files after merging")

	flag.BoolVar(&opts.Multithreaded, "multithreaded", false, "process posts with a worker pool")
	flag.IntVar(&opts.MaxWorkers, "max-workers", opts.MaxWorkers, "worker count when multithreaded")
	flag.Int64Var(&opts.MaxFileSizeMB, "max-file-size-mb", 0, "maximum file size in MB (0 for no limit)")
	flag.BoolVar(&opts.Overwrite, "overwrite", false, "overwrite existing files")

	flag.BoolVar(&opts.Verbose, "v", false, "verbose console output")
	flag.BoolVar(&opts.Debug, "d", false, "debug logging")
	flag.StringVar(&opts.ReportPath, "report", "", "write an HTML run report to this path")
	flag.Parse()

	opts.DownloadImages = !*noImages
	opts.DownloadVideos = !*noVideos
	opts.CleanupAfterMerge = !*noCleanup

	subs, err := resolveSubreddits(subreddits, listFile)
	if err != nil {
		return config.Options{}, err
	}
	opts.Subreddits = subs

	if err := opts.Validate(); err != nil {
		return config.Options{}, err
	}
	return opts, nil
}

const defaultListFile = "subreddits.txt"

func resolveSubreddits(commaList, listFile string) ([]string, error) {
	if commaList != "" {
		var subs []string
		for _, s := range strings.Split(commaList, ",") {
			if s = strings.TrimSpace(s); s != "" {
				subs = append(subs, strings.TrimPrefix(s, "r/"))
			}
		}
		return subs, nil
	}
	if listFile != "" {
		return ingest.LoadSubreddits(listFile)
	}
	if _, err := os.Stat(defaultListFile); err == nil {
		return ingest.LoadSubreddits(defaultListFile)
	}
	return nil, fmt.Errorf("no subreddits specified: use -s or -f")
}

// setupLogger writes JSON logs to a timestamped file under logs/,
// mirrored to stderr when verbose.
func setupLogger(opts config.Options) (*slog.Logger, func(), error) {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return nil, nil, fmt.Errorf("create logs directory: %w", err)
	}
	name := fmt.Sprintf("downloader_%s.log", time.Now().Format("20060102_150405"))
	file, err := os.Create(filepath.Join("logs", name))
	if err != nil {
		return nil, nil, fmt.Errorf("create log file: %w", err)
	}

	var w io.Writer = file
	if opts.Verbose {
		w = io.MultiWriter(file, os.Stderr)
	}
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = file.Close() }, nil
}
