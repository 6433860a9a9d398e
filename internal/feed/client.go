// Package feed supplies posts for a subreddit. Three implementations sit
// behind domain.Feed: an authenticated API client, a public-JSON client
// and a mock, selected by the FEED_MODE environment setting.
package feed

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/qepting91/reddit-media-downloader/internal/config"
	"github.com/qepting91/reddit-media-downloader/internal/domain"
)

// New selects the feed implementation for the configured mode.
func New(creds config.Credentials) (domain.Feed, error) {
	switch creds.FeedMode {
	case "api":
		return NewAPIFeed(creds)
	case "public":
		if creds.UserAgent == "" {
			return nil, fmt.Errorf("REDDIT_USER_AGENT is required for public mode")
		}
		return NewPublicFeed(creds.UserAgent), nil
	case "mock":
		return NewMockFeed(), nil
	default:
		return nil, fmt.Errorf("unknown FEED_MODE: %s (use 'api', 'public', or 'mock')", creds.FeedMode)
	}
}

// listingQuery builds the query string shared by both HTTP-backed feeds.
func listingQuery(q domain.Query) url.Values {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("raw_json", "1")
	if q.Sort == domain.SortTop && q.TimeFilter != "" {
		params.Set("t", q.TimeFilter)
	}
	return params
}
