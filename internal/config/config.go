package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Credentials holds environment-supplied settings for talking to reddit.
// A .env file loaded at startup feeds these through the process environment.
type Credentials struct {
	ClientID     string `env:"REDDIT_CLIENT_ID"`
	ClientSecret string `env:"REDDIT_CLIENT_SECRET"`
	Username     string `env:"REDDIT_USERNAME"`
	Password     string `env:"REDDIT_PASSWORD"`
	UserAgent    string `env:"REDDIT_USER_AGENT" env-default:"reddit-media-downloader/1.0 (by /u/anonymous)"`
	FeedMode     string `env:"FEED_MODE" env-default:"public"`
}

func LoadCredentials() (Credentials, error) {
	var c Credentials
	if err := cleanenv.ReadEnv(&c); err != nil {
		return Credentials{}, fmt.Errorf("read environment config: %w", err)
	}
	return c, nil
}

// Options are the per-run settings supplied on the command line.
type Options struct {
	Subreddits []string
	OutputDir  string

	Sort       string
	TimeFilter string
	Limit      int
	MinScore   int

	DownloadImages    bool
	DownloadVideos    bool
	DownloadAudio     bool
	KeepVideoOnly     bool
	CleanupAfterMerge bool

	Multithreaded bool
	MaxWorkers    int
	MaxFileSizeMB int64
	Overwrite     bool

	IncludeScore      bool
	ReplaceSpaces     bool
	MaxFilenameLength int

	Verbose    bool
	Debug      bool
	ReportPath string
}

// Defaults returns the baseline option set before flag parsing.
func Defaults() Options {
	return Options{
		OutputDir:         ".",
		Sort:              "hot",
		TimeFilter:        "all",
		Limit:             25,
		DownloadImages:    true,
		DownloadVideos:    true,
		CleanupAfterMerge: true,
		MaxWorkers:        4,
		IncludeScore:      true,
		ReplaceSpaces:     true,
		MaxFilenameLength: 100,
	}
}

var validTimeFilters = map[string]bool{
	"hour": true, "day": true, "week": true, "month": true, "year": true, "all": true,
}

func (o Options) Validate() error {
	switch o.Sort {
	case "hot", "new", "top":
	default:
		return fmt.Errorf("invalid sort %q (use hot, new or top)", o.Sort)
	}
	if !validTimeFilters[o.TimeFilter] {
		return fmt.Errorf("invalid time filter %q", o.TimeFilter)
	}
	if o.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", o.Limit)
	}
	if o.MaxWorkers <= 0 {
		return fmt.Errorf("max workers must be positive, got %d", o.MaxWorkers)
	}
	if len(o.Subreddits) == 0 {
		return fmt.Errorf("no subreddits specified")
	}
	return nil
}

// MaxFileSizeBytes converts the MB-denominated flag value; 0 means no limit.
func (o Options) MaxFileSizeBytes() int64 {
	return o.MaxFileSizeMB * 1024 * 1024
}
