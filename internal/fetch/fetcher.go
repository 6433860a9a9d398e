// Package fetch implements the retrying, size-bounded media downloader
// and the lightweight HEAD existence probe used for audio discovery.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Status tags the outcome of one Fetch call.
type Status int

const (
	// StatusDownloaded means the full body was written to the destination.
	StatusDownloaded Status = iota
	// StatusSkippedExisting means the destination already existed and
	// overwrite was not requested; no network call was made.
	StatusSkippedExisting
	// StatusSizeExceeded means the declared content length was over the
	// configured ceiling. Policy rejection, never retried.
	StatusSizeExceeded
	// StatusFailed means every attempt failed; Result.Err holds the last error.
	StatusFailed
)

// Result is the outcome of one fetch attempt sequence.
type Result struct {
	Status Status
	Bytes  int64
	Err    error
}

// Counters is the slice of the run statistics the fetcher updates itself:
// one skip per short-circuited call, one error per exhausted call.
type Counters interface {
	AddSkipped()
	AddError()
}

// Config tunes the fetcher. Zero values fall back to the defaults noted
// on each field.
type Config struct {
	MaxAttempts    int           // default 3
	AttemptTimeout time.Duration // per attempt, default 30s
	ProbeTimeout   time.Duration // HEAD probe, default 10s
	SizeCeiling    int64         // bytes, 0 = unlimited
	Overwrite      bool
	// BackoffUnit scales the 1, 2, 4, ... progression between failed
	// attempts. Default one second.
	BackoffUnit time.Duration
}

func (c Config) normalized() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 30 * time.Second
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 10 * time.Second
	}
	if c.BackoffUnit <= 0 {
		c.BackoffUnit = time.Second
	}
	return c
}

// Fetcher downloads remote media to local files.
type Fetcher struct {
	client *http.Client
	cfg    Config
	stats  Counters
	logger *slog.Logger
}

func New(client *http.Client, stats Counters, cfg Config, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if stats == nil {
		stats = noopCounters{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, cfg: cfg.normalized(), stats: stats, logger: logger}
}

type noopCounters struct{}

func (noopCounters) AddSkipped() {}
func (noopCounters) AddError()   {}

type httpStatusError struct {
	StatusCode int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// errSizeExceeded flows out of fetchOnce when the declared content length
// is over the ceiling; it terminates the attempt loop immediately.
var errSizeExceeded = errors.New("declared size exceeds ceiling")

// Fetch downloads url to destPath. The body is streamed to a temporary
// sibling file and renamed into place only on full success, so a failed
// final attempt never leaves partial content at destPath. Two posts
// mapping to the same sanitized destination race last-writer-wins.
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string) Result {
	if _, err := os.Stat(destPath); err == nil && !f.cfg.Overwrite {
		f.logger.Info("skipping existing file", "path", destPath)
		f.stats.AddSkipped()
		return Result{Status: StatusSkippedExisting}
	}

	var lastErr error
	for attempt := 0; attempt < f.cfg.MaxAttempts; attempt++ {
		f.logger.Debug("downloading", "url", url, "path", destPath, "attempt", attempt+1)

		n, err := f.fetchOnce(ctx, url, destPath)
		if err == nil {
			f.logger.Info("downloaded", "path", destPath, "bytes", n)
			return Result{Status: StatusDownloaded, Bytes: n}
		}
		if errors.Is(err, errSizeExceeded) {
			f.logger.Warn("file exceeds size limit", "url", url, "limit_bytes", f.cfg.SizeCeiling)
			return Result{Status: StatusSizeExceeded}
		}
		lastErr = err
		f.logger.Warn("download attempt failed", "url", url, "attempt", attempt+1, "err", err)

		if attempt == f.cfg.MaxAttempts-1 {
			break
		}
		// 2^attempt backoff units, observing cancellation between attempts.
		if err := waitBackoff(ctx, f.cfg.BackoffUnit<<attempt); err != nil {
			lastErr = err
			break
		}
	}

	f.logger.Error("download failed", "url", url, "attempts", f.cfg.MaxAttempts, "err", lastErr)
	f.stats.AddError()
	return Result{Status: StatusFailed, Err: lastErr}
}

func (f *Fetcher) fetchOnce(ctx context.Context, url, destPath string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &httpStatusError{StatusCode: resp.StatusCode}
	}
	if f.cfg.SizeCeiling > 0 && resp.ContentLength > f.cfg.SizeCeiling {
		return 0, errSizeExceeded
	}

	tmpPath := destPath + ".part"
	file, err := os.Create(tmpPath)
	if err != nil {
		return 0, err
	}

	n, err := copyChunks(ctx, file, resp.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, err
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, err
	}
	return n, nil
}

// copyChunks streams src to dst in fixed-size chunks, writing each chunk
// only after it has been fully received.
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 8192)
	var written int64
	for {
		n, readErr := io.ReadFull(src, buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return written, writeErr
			}
			written += int64(n)
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}
	}
}

// HeadExists reports whether url responds OK to a HEAD request within the
// probe timeout. Network errors and non-OK statuses both read as "does
// not exist"; the probe is never retried.
func (f *Fetcher) HeadExists(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func waitBackoff(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
