package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/qepting91/reddit-media-downloader/internal/domain"
)

// PublicFeed reads the unauthenticated reddit.com listing endpoints.
// No credentials needed, but a descriptive User-Agent is mandatory and
// the rate limit is stricter than the OAuth API's.
type PublicFeed struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	baseURL    string
}

func NewPublicFeed(userAgent string) *PublicFeed {
	return &PublicFeed{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// Public JSON limit: 1 req / 2 seconds (stricter)
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		userAgent: userAgent,
		baseURL:   "https://www.reddit.com",
	}
}

func (f *PublicFeed) Posts(ctx context.Context, sub string, q domain.Query) ([]domain.Post, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/r/%s/%s.json?%s", f.baseURL, sub, q.Sort, listingQuery(q).Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit public access status: %d", resp.StatusCode)
	}

	var env listingEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return env.posts(), nil
}
