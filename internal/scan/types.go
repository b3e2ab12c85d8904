package scan

import (
	"github.com/Deathbringer98/Username-Sniffer/internal/classify"
	"github.com/Deathbringer98/Username-Sniffer/internal/probe"
)

type Config struct {
	Concurrency int
}

// HandleReport aggregates one handle's sweep: one result per included
// profile, in completion order, plus the optional enrichment bio.
type HandleReport struct {
	Handle  string
	Results []probe.Result
	Bio     string
}

// Hits counts the Exists verdicts in the report.
func (r *HandleReport) Hits() int {
	return r.count(classify.Exists)
}

// Uncertain counts the verdicts that need manual review.
func (r *HandleReport) Uncertain() int {
	return r.count(classify.Uncertain)
}

func (r *HandleReport) count(v classify.Verdict) int {
	n := 0
	for _, res := range r.Results {
		if res.Verdict == v {
			n++
		}
	}
	return n
}

// ScanResult is the run-wide aggregate, owned exclusively by the orchestrator
// while scanning and read-only afterwards. Handles preserves submission order.
type ScanResult struct {
	Handles []string
	Reports map[string]*HandleReport
}

// Report returns the aggregate for one handle, or nil.
func (s *ScanResult) Report(handle string) *HandleReport {
	return s.Reports[handle]
}
