package cache

import (
	"math"
	"sync"
)

// Stats holds process-wide monotonically incrementing cache counters.
// Counters reset only on restart.
type Stats struct {
	mu            sync.Mutex
	requests      int64
	exactHits     int64
	semanticHits  int64
	misses        int64
	writes        int64
	invalidations int64
	errors        int64
}

// StatsSnapshot is a point-in-time copy of the counters plus the derived
// hit ratio.
type StatsSnapshot struct {
	Requests      int64   `json:"requests"`
	ExactHits     int64   `json:"exact_hits"`
	SemanticHits  int64   `json:"semantic_hits"`
	Misses        int64   `json:"misses"`
	Writes        int64   `json:"writes"`
	Invalidations int64   `json:"invalidations"`
	Errors        int64   `json:"errors"`
	HitRatio      float64 `json:"hit_ratio"`
}

func (s *Stats) IncRequests()      { s.inc(&s.requests) }
func (s *Stats) IncExactHits()     { s.inc(&s.exactHits) }
func (s *Stats) IncSemanticHits()  { s.inc(&s.semanticHits) }
func (s *Stats) IncMisses()        { s.inc(&s.misses) }
func (s *Stats) IncWrites()        { s.inc(&s.writes) }
func (s *Stats) IncInvalidations() { s.inc(&s.invalidations) }
func (s *Stats) IncErrors()        { s.inc(&s.errors) }

func (s *Stats) inc(counter *int64) {
	s.mu.Lock()
	*counter++
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of the counters. The hit ratio is
// (exact + semantic hits) / requests, rounded to 4 decimal places.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		Requests:      s.requests,
		ExactHits:     s.exactHits,
		SemanticHits:  s.semanticHits,
		Misses:        s.misses,
		Writes:        s.writes,
		Invalidations: s.invalidations,
		Errors:        s.errors,
	}
	if s.requests > 0 {
		ratio := float64(s.exactHits+s.semanticHits) / float64(s.requests)
		snap.HitRatio = math.Round(ratio*10000) / 10000
	}
	return snap
}
