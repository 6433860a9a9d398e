package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"golang.org/x/time/rate"

	"github.com/qepting91/reddit-media-downloader/internal/config"
	"github.com/qepting91/reddit-media-downloader/internal/domain"
)

// APIFeed talks to oauth.reddit.com through an authenticated go-reddit
// client. Listings are requested raw and decoded in-repo because the
// typed post helpers drop the media block carrying the video descriptor.
type APIFeed struct {
	client  *reddit.Client
	limiter *rate.Limiter
}

func NewAPIFeed(creds config.Credentials) (*APIFeed, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, errors.New("reddit API credentials are required in api mode")
	}

	client, err := reddit.NewClient(reddit.Credentials{
		ID:       creds.ClientID,
		Secret:   creds.ClientSecret,
		Username: creds.Username,
		Password: creds.Password,
	}, reddit.WithUserAgent(creds.UserAgent))
	if err != nil {
		return nil, fmt.Errorf("create reddit client: %w", err)
	}

	// API rate limit: ~60 reqs/min (safe buffer)
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)

	return &APIFeed{client: client, limiter: limiter}, nil
}

func (f *APIFeed) Posts(ctx context.Context, sub string, q domain.Query) ([]domain.Post, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("r/%s/%s?%s", sub, q.Sort, listingQuery(q).Encode())
	req, err := f.client.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}

	var env listingEnvelope
	if _, err := f.client.Do(ctx, req, &env); err != nil {
		return nil, fmt.Errorf("authenticated api error: %w", err)
	}
	return env.posts(), nil
}
