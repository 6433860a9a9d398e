package config

import (
	"strings"
	"testing"
)

func validOptions() Options {
	o := Defaults()
	o.Subreddits = []string{"pics"}
	return o
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Options)
		wantErr string
	}{
		{"defaults with subreddit", func(o *Options) {}, ""},
		{"bad sort", func(o *Options) { o.Sort = "rising" }, "invalid sort"},
		{"bad time filter", func(o *Options) { o.TimeFilter = "decade" }, "invalid time filter"},
		{"zero limit", func(o *Options) { o.Limit = 0 }, "limit must be positive"},
		{"zero workers", func(o *Options) { o.MaxWorkers = 0 }, "max workers must be positive"},
		{"no subreddits", func(o *Options) { o.Subreddits = nil }, "no subreddits"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := validOptions()
			tc.mutate(&o)
			err := o.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestMaxFileSizeBytes(t *testing.T) {
	o := Defaults()
	if got := o.MaxFileSizeBytes(); got != 0 {
		t.Fatalf("unset max size = %d, want 0", got)
	}
	o.MaxFileSizeMB = 3
	if got := o.MaxFileSizeBytes(); got != 3*1024*1024 {
		t.Fatalf("3 MB = %d bytes, want %d", got, 3*1024*1024)
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "id123")
	t.Setenv("REDDIT_CLIENT_SECRET", "sec456")
	t.Setenv("REDDIT_USER_AGENT", "test-agent/0.1")
	t.Setenv("FEED_MODE", "api")
	c, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials() error: %v", err)
	}
	if c.ClientID != "id123" || c.ClientSecret != "sec456" {
		t.Errorf("credentials = %q/%q, want id123/sec456", c.ClientID, c.ClientSecret)
	}
	if c.UserAgent != "test-agent/0.1" {
		t.Errorf("user agent = %q", c.UserAgent)
	}
	if c.FeedMode != "api" {
		t.Errorf("feed mode = %q, want api", c.FeedMode)
	}
}
