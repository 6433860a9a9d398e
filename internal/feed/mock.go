package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/qepting91/reddit-media-downloader/internal/domain"
)

// MockFeed implements domain.Feed with fabricated posts, useful for
// dry runs and for exercising the pipeline without touching reddit.
type MockFeed struct{}

func NewMockFeed() *MockFeed {
	return &MockFeed{}
}

func (m *MockFeed) Posts(_ context.Context, sub string, q domain.Query) ([]domain.Post, error) {
	// Simulate a little network latency (nice for testing concurrency).
	time.Sleep(100 * time.Millisecond)

	var posts []domain.Post
	for i := 0; i < q.Limit; i++ {
		post := domain.Post{
			ID:    fmt.Sprintf("mock_%s_%d", sub, i),
			Title: fmt.Sprintf("[%s] Simulated post #%d", sub, i),
			URL:   fmt.Sprintf("http://localhost/mock/%s/%d.jpg", sub, i),
			Score: 10 * (i + 1),
		}
		// Every third post is a hosted video with audio.
		if i%3 == 2 {
			post.URL = fmt.Sprintf("http://localhost/mock/%s/%d", sub, i)
			post.IsVideo = true
			post.Video = &domain.VideoSource{
				FallbackURL: fmt.Sprintf("http://localhost/mock/%s/%d/DASH_720.mp4", sub, i),
				HasAudio:    true,
			}
		}
		posts = append(posts, post)
	}
	return posts, nil
}
