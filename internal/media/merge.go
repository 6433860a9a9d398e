package media

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
)

// MergeStatus tags the outcome of one merge call.
type MergeStatus int

const (
	MergeSuccess MergeStatus = iota
	// MergeToolUnavailable means the toolchain probe failed at startup;
	// every merge short-circuits without spawning a process.
	MergeToolUnavailable
	MergeFailed
)

// MergeResult carries the merge outcome and, on failure, the diagnostic
// text captured from the toolchain's error stream.
type MergeResult struct {
	Status     MergeStatus
	Diagnostic string
}

// Merger combines a video-only file and an audio file into one output.
type Merger interface {
	Available() bool
	Merge(ctx context.Context, videoPath, audioPath, outputPath string) MergeResult
}

// FFmpegMerger shells out to ffmpeg, copying the video stream and
// re-encoding audio to AAC. Availability is probed once at construction.
type FFmpegMerger struct {
	path      string
	available bool
	logger    *slog.Logger
}

// NewFFmpegMerger probes binPath (or "ffmpeg" from PATH when empty) with
// a version query and remembers the result for the whole session.
func NewFFmpegMerger(binPath string, logger *slog.Logger) *FFmpegMerger {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &FFmpegMerger{path: binPath, logger: logger}
	m.available = m.probe()
	if m.available {
		logger.Debug("ffmpeg is available", "path", binPath)
	}
	return m
}

func (m *FFmpegMerger) probe() bool {
	if _, err := exec.LookPath(m.path); err != nil {
		return false
	}
	return exec.Command(m.path, "-version").Run() == nil
}

func (m *FFmpegMerger) Available() bool {
	return m.available
}

func mergeArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy", // copy the video stream without re-encoding
		"-c:a", "aac",
		"-strict", "experimental",
		"-loglevel", "warning",
		"-y", // overwrite output file if it exists
		outputPath,
	}
}

// Merge muxes videoPath and audioPath into outputPath. It never deletes
// its inputs; cleanup policy belongs to the caller.
func (m *FFmpegMerger) Merge(ctx context.Context, videoPath, audioPath, outputPath string) MergeResult {
	if !m.available {
		return MergeResult{Status: MergeToolUnavailable}
	}

	m.logger.Debug("merging audio and video", "video", videoPath, "audio", audioPath, "output", outputPath)

	cmd := exec.CommandContext(ctx, m.path, mergeArgs(videoPath, audioPath, outputPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			diag = err.Error()
		}
		return MergeResult{Status: MergeFailed, Diagnostic: diag}
	}
	return MergeResult{Status: MergeSuccess}
}
