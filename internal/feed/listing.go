package feed

import "github.com/qepting91/reddit-media-downloader/internal/domain"

// listingEnvelope mirrors reddit's listing JSON, both on the public
// endpoints and on oauth.reddit.com. Only the fields the pipeline needs
// are decoded; the media block carries the video descriptor the typed
// API clients drop.
type listingEnvelope struct {
	Data struct {
		Children []struct {
			Data listingPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type listingPost struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Score     int    `json:"score"`
	IsVideo   bool   `json:"is_video"`
	IsGallery bool   `json:"is_gallery"`
	Media     struct {
		RedditVideo *redditVideo `json:"reddit_video"`
	} `json:"media"`
}

type redditVideo struct {
	FallbackURL string `json:"fallback_url"`
	// Pointer so an absent field defaults to "assume it has audio".
	HasAudio *bool `json:"has_audio"`
}

func (e *listingEnvelope) posts() []domain.Post {
	var result []domain.Post
	for _, child := range e.Data.Children {
		d := child.Data
		post := domain.Post{
			ID:        d.ID,
			Title:     d.Title,
			URL:       d.URL,
			Score:     d.Score,
			IsVideo:   d.IsVideo,
			IsGallery: d.IsGallery,
		}
		if v := d.Media.RedditVideo; v != nil {
			hasAudio := true
			if v.HasAudio != nil {
				hasAudio = *v.HasAudio
			}
			post.Video = &domain.VideoSource{
				FallbackURL: v.FallbackURL,
				HasAudio:    hasAudio,
			}
		}
		result = append(result, post)
	}
	return result
}
