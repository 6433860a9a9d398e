package domain

import (
	"context"
	"strings"
)

// MediaKind is the variant of a post, decided once at classification time.
type MediaKind int

const (
	KindOther MediaKind = iota
	KindImage
	KindVideo
	KindGallery
)

func (k MediaKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindGallery:
		return "gallery"
	default:
		return "other"
	}
}

// Post is one feed item. Title and URL are immutable for the lifetime of
// processing; ID is unique within one collection fetch.
type Post struct {
	ID        string
	Title     string
	URL       string
	Score     int
	IsVideo   bool
	IsGallery bool
	// Video is non-nil only when the listing carried a reddit_video block.
	Video *VideoSource
}

// VideoSource describes a hosted video: a direct playback URL plus the
// feed's hint about whether a sibling audio stream exists.
type VideoSource struct {
	FallbackURL string
	HasAudio    bool
}

// Sort is the post ordering requested from the feed.
type Sort string

const (
	SortHot Sort = "hot"
	SortNew Sort = "new"
	SortTop Sort = "top"
)

// Query bounds one listing request.
type Query struct {
	Sort       Sort
	TimeFilter string // only meaningful for SortTop
	Limit      int
}

// Feed yields posts for a named subreddit. Implementations own
// authentication, pagination and rate limiting.
type Feed interface {
	Posts(ctx context.Context, subreddit string, q Query) ([]Post, error)
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// Classify resolves a post to its media variant: image by URL suffix,
// then video by hint, then gallery by hint.
func Classify(p Post) MediaKind {
	lower := strings.ToLower(p.URL)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return KindImage
		}
	}
	if p.IsVideo {
		return KindVideo
	}
	if p.IsGallery {
		return KindGallery
	}
	return KindOther
}
