// Package probe executes a single site probe for a single handle: URL
// substitution, method fallback, bounded retry with backoff, and delegation
// to the classifier. A probe never fails; it always resolves to a result.
package probe

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Deathbringer98/Username-Sniffer/internal/classify"
	"github.com/Deathbringer98/Username-Sniffer/internal/httpx"
	"github.com/Deathbringer98/Username-Sniffer/internal/sites"
)

type Config struct {
	UserAgent    string
	Timeout      time.Duration // per-attempt wall clock, connect + transfer
	MaxBodyBytes int64
	MaxAttempts  int
	BackoffBase  time.Duration
}

// Result is the immutable outcome of one (handle, profile) probe.
// Status is the last observed HTTP status, 0 when every attempt failed in
// transport.
type Result struct {
	Site    string
	Handle  string
	Verdict classify.Verdict
	URL     string
	Status  int
}

type Prober struct {
	client  httpx.Doer
	cfg     Config
	limiter *HostLimiter
	log     *logrus.Logger
}

func New(client httpx.Doer, cfg Config, limiter *HostLimiter, log *logrus.Logger) *Prober {
	if cfg.UserAgent == "" {
		cfg.UserAgent = httpx.DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 120000
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 250 * time.Millisecond
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	return &Prober{client: client, cfg: cfg, limiter: limiter, log: log}
}

// Probe checks one handle against one profile. Transport failures are retried
// up to the attempt budget with exponential backoff; a probe that exhausts
// its budget resolves to Uncertain with the originally constructed URL.
func (p *Prober) Probe(ctx context.Context, profile *sites.Profile, handle string) Result {
	target := profile.ProbeURL(handle)
	res := Result{
		Site:    profile.Name,
		Handle:  handle,
		Verdict: classify.Uncertain,
		URL:     target,
	}

	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			// 0.25s, 0.5s, ... doubling per retry.
			backoff := p.cfg.BackoffBase << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return res
			}
		}

		verdict, status, err := p.attempt(ctx, profile, target)
		if err != nil {
			p.log.WithFields(logrus.Fields{
				"site":    profile.Name,
				"handle":  handle,
				"attempt": attempt + 1,
			}).WithError(err).Debug("probe attempt failed")

			if ctx.Err() != nil {
				return res
			}
			continue
		}

		res.Verdict = verdict
		res.Status = status
		return res
	}

	return res
}

// blocked statuses make HEAD unreliable: some platforms reject HEAD outright
// but serve GET normally.
func blockedStatus(status int) bool {
	switch status {
	case http.StatusForbidden,
		http.StatusMethodNotAllowed,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable:
		return true
	}
	return false
}

func (p *Prober) attempt(ctx context.Context, profile *sites.Profile, target string) (classify.Verdict, int, error) {
	if err := p.limiter.Wait(ctx, hostOf(target)); err != nil {
		return classify.Uncertain, 0, err
	}

	actx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	resp, err := p.do(actx, profile.Method, target)
	if err != nil {
		return classify.Uncertain, 0, err
	}

	if profile.Method == http.MethodHead && blockedStatus(resp.StatusCode) {
		p.log.WithFields(logrus.Fields{
			"site":   profile.Name,
			"status": resp.StatusCode,
		}).Debug("HEAD blocked, retrying with GET")

		resp.Body.Close()
		resp, err = p.do(actx, http.MethodGet, target)
		if err != nil {
			return classify.Uncertain, 0, err
		}
	}
	defer resp.Body.Close()

	finalURL, history := redirectTrail(resp)
	verdict := classify.Classify(profile, resp.StatusCode, finalURL, history, p.bodyFetcher(resp))
	return verdict, resp.StatusCode, nil
}

func (p *Prober) do(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := httpx.NewRequest(ctx, method, target, nil, p.cfg.UserAgent)
	if err != nil {
		return nil, err
	}
	return p.client.Do(req)
}

// bodyFetcher hands the classifier a lazy, capped body read so probes whose
// rules never look at the body skip the transfer entirely.
func (p *Prober) bodyFetcher(resp *http.Response) classify.BodyFetcher {
	return func() (string, error) {
		b, err := io.ReadAll(io.LimitReader(resp.Body, p.cfg.MaxBodyBytes))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// redirectTrail reports the final response URL plus every earlier URL in the
// redirect chain, walking the request/response links the client leaves behind.
func redirectTrail(resp *http.Response) (finalURL string, history []string) {
	if resp.Request == nil || resp.Request.URL == nil {
		return "", nil
	}
	finalURL = resp.Request.URL.String()

	for r := resp.Request; r.Response != nil; {
		prev := r.Response.Request
		if prev == nil || prev.URL == nil {
			break
		}
		history = append(history, prev.URL.String())
		r = prev
	}
	return finalURL, history
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
