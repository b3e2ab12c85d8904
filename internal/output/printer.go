package output

import (
	"io"
	"log"
	"sort"

	"github.com/fatih/color"

	"github.com/Deathbringer98/Username-Sniffer/internal/classify"
	"github.com/Deathbringer98/Username-Sniffer/internal/probe"
	"github.com/Deathbringer98/Username-Sniffer/internal/scan"
)

type Printer struct {
	noColor       bool
	verbose       bool
	showUncertain bool

	logger *log.Logger
}

func NewPrinter(stdout io.Writer, noColor, verbose, showUncertain bool) *Printer {
	return &Printer{
		noColor:       noColor,
		verbose:       verbose,
		showUncertain: showUncertain,
		logger:        log.New(stdout, "", 0),
	}
}

// Result streams one probe outcome as it completes. Hits always print;
// misses and uncertains only in verbose mode.
func (p *Printer) Result(res probe.Result) {
	switch res.Verdict {
	case classify.Exists:
		if p.noColor {
			p.logger.Printf("[%s] %s: %s", "+", res.Site, res.URL)
		} else {
			p.logger.Printf("[%s] %s: %s", color.HiGreenString("+"), color.HiWhiteString(res.Site), res.URL)
		}
	case classify.NotFound:
		if !p.verbose {
			return
		}
		if p.noColor {
			p.logger.Printf("[%s] %s: %s", "-", res.Site, "Not Found!")
		} else {
			p.logger.Printf("[%s] %s: %s", color.HiRedString("-"), res.Site, color.HiYellowString("Not Found!"))
		}
	default:
		if !p.verbose {
			return
		}
		if p.noColor {
			p.logger.Printf("[%s] %s: uncertain (status %d)", "?", res.Site, res.Status)
		} else {
			p.logger.Printf("[%s] %s: %s (status %d)",
				color.HiYellowString("?"),
				res.Site,
				color.HiYellowString("uncertain"),
				res.Status,
			)
		}
	}
}

// Report prints one handle's aggregate after its sweep finishes.
func (p *Printer) Report(rep *scan.HandleReport) {
	hits := make([]probe.Result, 0, len(rep.Results))
	uncertain := make([]probe.Result, 0)
	for _, res := range rep.Results {
		switch res.Verdict {
		case classify.Exists:
			hits = append(hits, res)
		case classify.Uncertain:
			uncertain = append(uncertain, res)
		}
	}
	sortBySite(hits)
	sortBySite(uncertain)

	if len(hits) > 0 {
		if p.noColor {
			p.logger.Printf("\nFound %d account(s) for %s:", len(hits), rep.Handle)
		} else {
			p.logger.Printf("\nFound %s account(s) for %s:",
				color.HiGreenString("%d", len(hits)),
				color.HiGreenString(rep.Handle),
			)
		}
		for _, res := range hits {
			p.line("+", color.HiGreenString("+"), res.Site, res.URL)
		}
	}

	if p.showUncertain && len(uncertain) > 0 {
		if p.noColor {
			p.logger.Printf("\nUncertain (blocked/redirect/login) for %s:", rep.Handle)
		} else {
			p.logger.Printf("\nUncertain (blocked/redirect/login) for %s:", color.HiYellowString(rep.Handle))
		}
		for _, res := range uncertain {
			p.line("?", color.HiYellowString("?"), res.Site, res.URL)
		}
	}

	if rep.Bio != "" {
		if p.noColor {
			p.logger.Printf("\nBio for %s: %s", rep.Handle, rep.Bio)
		} else {
			p.logger.Printf("\nBio for %s: %s", color.HiCyanString(rep.Handle), rep.Bio)
		}
	}
}

// Summary prints the per-handle hit counts, most hits first.
func (p *Printer) Summary(result *scan.ScanResult) {
	type row struct {
		handle string
		hits   int
		sites  int
	}

	rows := make([]row, 0, len(result.Handles))
	for _, handle := range result.Handles {
		rep := result.Report(handle)
		if rep == nil {
			continue
		}
		rows = append(rows, row{handle: handle, hits: rep.Hits(), sites: len(rep.Results)})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].hits > rows[j].hits })

	p.logger.Printf("\nSummary:")
	for _, r := range rows {
		if p.noColor {
			p.logger.Printf("  %s: %d hit(s) across %d site(s)", r.handle, r.hits, r.sites)
			continue
		}

		count := color.RedString("%d", r.hits)
		if r.hits > 5 {
			count = color.GreenString("%d", r.hits)
		} else if r.hits >= 1 {
			count = color.YellowString("%d", r.hits)
		}
		p.logger.Printf("  %s: %s hit(s) across %d site(s)", color.CyanString(r.handle), count, r.sites)
	}
}

func (p *Printer) line(plain, colored, site, url string) {
	if p.noColor {
		p.logger.Printf("[%s] %s: %s", plain, site, url)
		return
	}
	p.logger.Printf("[%s] %s: %s", colored, site, url)
}

func sortBySite(results []probe.Result) {
	sort.Slice(results, func(i, j int) bool { return results[i].Site < results[j].Site })
}
