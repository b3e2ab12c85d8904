// Package scan fans probe executions out across {handles} x {profiles} under
// a global concurrency cap and folds completions into the run aggregate.
package scan

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Deathbringer98/Username-Sniffer/internal/classify"
	"github.com/Deathbringer98/Username-Sniffer/internal/enrich"
	"github.com/Deathbringer98/Username-Sniffer/internal/probe"
	"github.com/Deathbringer98/Username-Sniffer/internal/sites"
)

type Scanner struct {
	prober   *probe.Prober
	enricher *enrich.Enricher
	cfg      Config
	log      *logrus.Logger
}

func NewScanner(prober *probe.Prober, enricher *enrich.Enricher, cfg Config, log *logrus.Logger) *Scanner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 25
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scanner{prober: prober, enricher: enricher, cfg: cfg, log: log}
}

// Scan checks every handle against every profile. Handles are processed one
// at a time, each handle's full site sweep completing before the next begins;
// within a sweep, probes run concurrently up to the configured ceiling.
//
// onResult, when non-nil, streams results in completion order. onReport,
// when non-nil, fires once per handle after its sweep (and any enrichment)
// finishes. A probe never aborts the scan; the only fatal inputs are an
// empty handle set, an empty handle, or an empty profile set.
func (s *Scanner) Scan(
	ctx context.Context,
	handles []string,
	profiles []*sites.Profile,
	onResult func(probe.Result),
	onReport func(*HandleReport),
) (*ScanResult, error) {
	if len(handles) == 0 {
		return nil, fmt.Errorf("no handles to scan")
	}
	for _, h := range handles {
		if strings.TrimSpace(h) == "" {
			return nil, fmt.Errorf("empty handle")
		}
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no site profiles to scan")
	}

	result := &ScanResult{
		Handles: append([]string(nil), handles...),
		Reports: make(map[string]*HandleReport, len(handles)),
	}

	for _, handle := range handles {
		report := s.sweep(ctx, handle, profiles, onResult)
		result.Reports[handle] = report

		if onReport != nil {
			onReport(report)
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
	}

	return result, nil
}

// sweep runs one handle against all profiles and triggers enrichment when a
// high-signal platform reported a hit.
func (s *Scanner) sweep(
	ctx context.Context,
	handle string,
	profiles []*sites.Profile,
	onResult func(probe.Result),
) *HandleReport {
	report := &HandleReport{
		Handle:  handle,
		Results: make([]probe.Result, 0, len(profiles)),
	}

	workers := min(s.cfg.Concurrency, len(profiles))

	jobs := make(chan *sites.Profile)
	results := make(chan probe.Result, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for p := range jobs {
				results <- s.prober.Probe(ctx, p, handle)
			}
		}()
	}

	go func() {
		defer close(results)
		wg.Wait()
	}()

	go func() {
		defer close(jobs)
		for _, p := range profiles {
			select {
			case <-ctx.Done():
				return
			case jobs <- p:
			}
		}
	}()

	highSignal := make(map[string]bool, 1)
	for _, p := range profiles {
		if p.HighSignal {
			highSignal[p.Name] = true
		}
	}

	var enrichURL string
	for res := range results {
		report.Results = append(report.Results, res)

		if enrichURL == "" && res.Verdict == classify.Exists && highSignal[res.Site] {
			enrichURL = res.URL
		}
		if onResult != nil {
			onResult(res)
		}
	}

	if enrichURL != "" && s.enricher != nil && ctx.Err() == nil {
		if bio := s.enricher.Bio(ctx, enrichURL); bio != "" {
			report.Bio = bio
		} else {
			s.log.WithField("handle", handle).Debug("no bio extracted")
		}
	}

	return report
}
