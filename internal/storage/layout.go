package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// CollectionDirs is the on-disk namespace for one subreddit:
// <output-dir>/<name>/videos and <output-dir>/<name>/images.
type CollectionDirs struct {
	Videos string
	Images string
}

// EnsureCollectionDirs creates both media directories for a collection.
// Creation is idempotent; pre-existing directories are left alone.
func EnsureCollectionDirs(baseDir, collection string) (CollectionDirs, error) {
	root := filepath.Join(baseDir, collection)
	dirs := CollectionDirs{
		Videos: filepath.Join(root, "videos"),
		Images: filepath.Join(root, "images"),
	}
	for _, dir := range []string{dirs.Videos, dirs.Images} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return CollectionDirs{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return dirs, nil
}
