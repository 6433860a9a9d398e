package ingest

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Regex for valid subreddit names.
var subNameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{3,21}$`)

// LoadSubreddits reads one subreddit name per line, skipping blank lines
// and # comments. Invalid names are dropped (fail-soft); an unreadable
// file is an error.
func LoadSubreddits(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subreddit list: %w", err)
	}
	defer f.Close()

	var subs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		name = strings.TrimPrefix(name, "r/")
		if !subNameRegex.MatchString(name) {
			continue
		}
		subs = append(subs, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subreddit list: %w", err)
	}
	return subs, nil
}
