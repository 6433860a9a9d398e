// Package pipeline orchestrates post processing: the per-post state
// machine, the per-collection runner and the session that ties a run
// together.
package pipeline

import "sync/atomic"

// Stats are the run counters shared by every worker. All increments are
// atomic and commutative, so final totals are independent of worker
// count and interleaving.
type Stats struct {
	processed atomic.Int64
	images    atomic.Int64
	videos    atomic.Int64
	merged    atomic.Int64
	skipped   atomic.Int64
	errors    atomic.Int64
}

func NewStats() *Stats { return &Stats{} }

func (s *Stats) AddProcessed() { s.processed.Add(1) }
func (s *Stats) AddImage()     { s.images.Add(1) }
func (s *Stats) AddVideo()     { s.videos.Add(1) }
func (s *Stats) AddMerged()    { s.merged.Add(1) }
func (s *Stats) AddSkipped()   { s.skipped.Add(1) }
func (s *Stats) AddError()     { s.errors.Add(1) }

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Processed int64
	Images    int64
	Videos    int64
	Merged    int64
	Skipped   int64
	Errors    int64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Processed: s.processed.Load(),
		Images:    s.images.Load(),
		Videos:    s.videos.Load(),
		Merged:    s.merged.Load(),
		Skipped:   s.skipped.Load(),
		Errors:    s.errors.Load(),
	}
}

// Sub returns the counter deltas accumulated since an earlier snapshot.
func (s Snapshot) Sub(earlier Snapshot) Snapshot {
	return Snapshot{
		Processed: s.Processed - earlier.Processed,
		Images:    s.Images - earlier.Images,
		Videos:    s.Videos - earlier.Videos,
		Merged:    s.Merged - earlier.Merged,
		Skipped:   s.Skipped - earlier.Skipped,
		Errors:    s.Errors - earlier.Errors,
	}
}
