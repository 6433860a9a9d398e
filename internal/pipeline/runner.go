package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/qepting91/reddit-media-downloader/internal/config"
	"github.com/qepting91/reddit-media-downloader/internal/domain"
	"github.com/qepting91/reddit-media-downloader/internal/storage"
)

// Runner drives one collection: it pulls a bounded listing from the feed,
// prepares the output directories and dispatches posts to the processor,
// sequentially or across a fixed-size worker pool.
type Runner struct {
	feed      domain.Feed
	processor *Processor
	opts      config.Options
	logger    *slog.Logger
}

func NewRunner(feed domain.Feed, processor *Processor, opts config.Options, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{feed: feed, processor: processor, opts: opts, logger: logger}
}

// Run processes one subreddit end to end. The error covers only
// collection-level faults (listing fetch, directory creation); per-post
// faults are absorbed by the processor and show up in the counters.
func (r *Runner) Run(ctx context.Context, collection string) error {
	r.logger.Info("processing subreddit", "subreddit", collection, "sort", r.opts.Sort, "limit", r.opts.Limit)

	posts, err := r.feed.Posts(ctx, collection, domain.Query{
		Sort:       domain.Sort(r.opts.Sort),
		TimeFilter: r.opts.TimeFilter,
		Limit:      r.opts.Limit,
	})
	if err != nil {
		return fmt.Errorf("fetch posts for r/%s: %w", collection, err)
	}

	dirs, err := storage.EnsureCollectionDirs(r.opts.OutputDir, collection)
	if err != nil {
		return fmt.Errorf("prepare directories for r/%s: %w", collection, err)
	}

	if r.opts.Multithreaded {
		r.runPool(ctx, collection, posts, dirs)
	} else {
		r.runSequential(ctx, collection, posts, dirs)
	}
	return nil
}

func (r *Runner) runSequential(ctx context.Context, collection string, posts []domain.Post, dirs storage.CollectionDirs) {
	for i, post := range posts {
		if ctx.Err() != nil {
			break
		}
		if r.opts.Verbose {
			fmt.Printf("\rProcessing post %d/%d from r/%s", i+1, len(posts), collection)
		}
		r.processor.Process(ctx, post, dirs)
	}
	if r.opts.Verbose && len(posts) > 0 {
		fmt.Println()
	}
}

// runPool dispatches posts across MaxWorkers goroutines and waits for all
// of them before returning. Completion order and log interleaving are
// unspecified.
func (r *Runner) runPool(ctx context.Context, collection string, posts []domain.Post, dirs storage.CollectionDirs) {
	jobs := make(chan domain.Post)
	var wg sync.WaitGroup

	for i := 0; i < r.opts.MaxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for post := range jobs {
				if ctx.Err() != nil {
					continue // drain without processing once cancelled
				}
				r.processor.Process(ctx, post, dirs)
			}
		}()
	}

dispatch:
	for _, post := range posts {
		select {
		case jobs <- post:
		case <-ctx.Done():
			r.logger.Info("cancelled, stopping dispatch", "subreddit", collection)
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
}
