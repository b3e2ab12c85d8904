// Package classify turns one HTTP observation into a tri-state existence
// verdict. The decision procedure is pure: the same inputs always produce the
// same verdict, and the body is only fetched when a body rule can use it.
package classify

import (
	"net/http"

	"github.com/dlclark/regexp2"

	"github.com/Deathbringer98/Username-Sniffer/internal/sites"
)

// Verdict is the tri-state outcome of one probe. Absence of information is
// Uncertain, never a missing value.
type Verdict int

const (
	Uncertain Verdict = iota
	Exists
	NotFound
)

func (v Verdict) String() string {
	switch v {
	case Exists:
		return "exists"
	case NotFound:
		return "not_found"
	default:
		return "uncertain"
	}
}

// MarshalText lets verdicts round-trip through JSON/CSV export.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(text []byte) error {
	switch string(text) {
	case "exists":
		*v = Exists
	case "not_found":
		*v = NotFound
	default:
		*v = Uncertain
	}
	return nil
}

// BodyFetcher lazily retrieves the (capped) response body. The classifier
// invokes it at most once, and only when a configured rule needs the body.
type BodyFetcher func() (string, error)

// Classify maps one response observation onto a verdict.
//
// The ladder deliberately biases toward Uncertain: a handle falsely reported
// as taken is worse than one surfaced for manual review.
func Classify(p *sites.Profile, status int, finalURL string, history []string, fetchBody BodyFetcher) Verdict {
	// Hard not-found statuses win over every configured rule.
	if status == http.StatusNotFound || status == http.StatusGone {
		return NotFound
	}

	// A redirect into a login/signup area means the site answers the same way
	// for known and unknown handles; a 200 after that proves nothing.
	if p.BadRedirect != nil {
		if matches(p.BadRedirect, finalURL) {
			return Uncertain
		}
		for _, u := range history {
			if matches(p.BadRedirect, u) {
				return Uncertain
			}
		}
	}

	if status == http.StatusOK {
		if !p.HasBodyRules() || fetchBody == nil {
			// A bare 200 is not proof; many sites serve 200 "not found" pages.
			return Uncertain
		}

		body, err := fetchBody()
		if err != nil {
			return Uncertain
		}

		if p.NotFound != nil && matches(p.NotFound, body) {
			return NotFound
		}
		if p.MustContain != nil {
			if matches(p.MustContain, body) {
				return Exists
			}
			return Uncertain
		}
		// Only not_found configured and it did not match.
		return Exists
	}

	// Redirect, blocked, throttled, server failure, or anything unrecognized:
	// no evidence either way.
	return Uncertain
}

func matches(re *regexp2.Regexp, s string) bool {
	ok, err := re.MatchString(s)
	return err == nil && ok
}
