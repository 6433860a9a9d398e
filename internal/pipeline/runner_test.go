package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/reddit-media-downloader/internal/config"
	"github.com/qepting91/reddit-media-downloader/internal/domain"
	"github.com/qepting91/reddit-media-downloader/internal/fetch"
	"github.com/qepting91/reddit-media-downloader/internal/media"
)

// stubFeed returns a canned listing for any subreddit.
type stubFeed struct {
	posts []domain.Post
	err   error
}

func (s *stubFeed) Posts(_ context.Context, _ string, q domain.Query) ([]domain.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	if q.Limit < len(s.posts) {
		return s.posts[:q.Limit], nil
	}
	return s.posts, nil
}

func newRunnerHarness(t *testing.T, srv *httptest.Server, feed domain.Feed, opts config.Options) (*Runner, *Stats) {
	t.Helper()
	stats := NewStats()
	f := fetch.New(srv.Client(), stats, fetch.Config{MaxAttempts: 1, BackoffUnit: time.Millisecond}, nil)
	resolver := media.NewAudioResolver(f, nil)
	proc := NewProcessor(opts, f, resolver, &fakeMerger{}, stats, nil)
	return NewRunner(feed, proc, opts, nil), stats
}

func TestRunner_TwoImagePosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("img"))
	}))
	defer srv.Close()

	feed := &stubFeed{posts: []domain.Post{
		{ID: "a", Title: "first", URL: srv.URL + "/a.jpg", Score: 5},
		{ID: "b", Title: "second", URL: srv.URL + "/b.png", Score: 9},
	}}

	opts := config.Defaults()
	opts.OutputDir = t.TempDir()
	opts.Limit = 2
	runner, stats := newRunnerHarness(t, srv, feed, opts)

	require.NoError(t, runner.Run(context.Background(), "pics"))

	got := stats.Snapshot()
	assert.Equal(t, int64(2), got.Images)
	assert.Equal(t, int64(0), got.Errors)
	assert.Equal(t, int64(2), got.Processed)

	assert.FileExists(t, filepath.Join(opts.OutputDir, "pics", "images", "5_first.jpg"))
	assert.FileExists(t, filepath.Join(opts.OutputDir, "pics", "images", "9_second.png"))
}

func TestRunner_FeedErrorSurfacesWithoutProcessing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected network call")
	}))
	defer srv.Close()

	opts := config.Defaults()
	opts.OutputDir = t.TempDir()
	runner, stats := newRunnerHarness(t, srv, &stubFeed{err: errors.New("listing unavailable")}, opts)

	err := runner.Run(context.Background(), "pics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "r/pics")
	assert.Equal(t, int64(0), stats.Snapshot().Processed)
}

func TestRunner_PooledCountersMatchSequential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("img"))
	}))
	defer srv.Close()

	const good, bad = 12, 5
	var posts []domain.Post
	for i := 0; i < good; i++ {
		posts = append(posts, domain.Post{
			ID:    fmt.Sprintf("ok%d", i),
			Title: fmt.Sprintf("image %d", i),
			URL:   srv.URL + fmt.Sprintf("/%d.jpg", i),
			Score: 1,
		})
	}
	for i := 0; i < bad; i++ {
		// Video posts with no descriptor are local errors.
		posts = append(posts, domain.Post{
			ID:      fmt.Sprintf("bad%d", i),
			Title:   fmt.Sprintf("broken %d", i),
			URL:     srv.URL + fmt.Sprintf("/v%d", i),
			Score:   1,
			IsVideo: true,
		})
	}

	for _, workers := range []int{1, 4, 8} {
		opts := config.Defaults()
		opts.OutputDir = t.TempDir()
		opts.Limit = len(posts)
		opts.Multithreaded = true
		opts.MaxWorkers = workers
		runner, stats := newRunnerHarness(t, srv, &stubFeed{posts: posts}, opts)

		require.NoError(t, runner.Run(context.Background(), "mixed"))

		got := stats.Snapshot()
		assert.Equal(t, int64(good), got.Images, "workers=%d", workers)
		assert.Equal(t, int64(bad), got.Errors, "workers=%d", workers)
		assert.Equal(t, int64(good+bad), got.Processed, "workers=%d", workers)
	}
}

func TestRunner_Cancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte("img"))
	}))
	defer srv.Close()
	defer close(release)

	var posts []domain.Post
	for i := 0; i < 50; i++ {
		posts = append(posts, domain.Post{
			ID:    fmt.Sprintf("p%d", i),
			Title: fmt.Sprintf("image %d", i),
			URL:   srv.URL + fmt.Sprintf("/%d.jpg", i),
			Score: 1,
		})
	}

	opts := config.Defaults()
	opts.OutputDir = t.TempDir()
	opts.Limit = len(posts)
	opts.Multithreaded = true
	opts.MaxWorkers = 2
	runner, _ := newRunnerHarness(t, srv, &stubFeed{posts: posts}, opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, "slow") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
}

func TestSession_SummaryAndPerCollectionResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("img"))
	}))
	defer srv.Close()

	feed := &stubFeed{posts: []domain.Post{
		{ID: "a", Title: "one", URL: srv.URL + "/a.jpg", Score: 1},
	}}

	opts := config.Defaults()
	opts.OutputDir = t.TempDir()
	opts.Subreddits = []string{"first", "second"}

	stats := NewStats()
	f := fetch.New(srv.Client(), stats, fetch.Config{MaxAttempts: 1, BackoffUnit: time.Millisecond}, nil)
	proc := NewProcessor(opts, f, media.NewAudioResolver(f, nil), &fakeMerger{}, stats, nil)
	session := NewSession(NewRunner(feed, proc, opts, nil), stats, opts, nil)

	results := session.Run(context.Background())

	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Name)
	assert.Equal(t, int64(1), results[0].Stats.Images)
	assert.Equal(t, int64(1), results[1].Stats.Images)
	assert.Equal(t, int64(2), stats.Snapshot().Images)
}
