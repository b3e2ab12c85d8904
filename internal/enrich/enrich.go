// Package enrich fetches a short public biography after a high-signal
// platform reports a hit. Everything here is best effort: any failure yields
// an empty bio and never touches the main verdict set.
package enrich

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/Deathbringer98/Username-Sniffer/internal/httpx"
)

const (
	maxBioLen    = 80
	maxPageBytes = 512 << 10
)

type Enricher struct {
	client    httpx.Doer
	userAgent string
}

func New(client httpx.Doer, userAgent string) *Enricher {
	if userAgent == "" {
		userAgent = httpx.DefaultUserAgent
	}
	return &Enricher{client: client, userAgent: userAgent}
}

// Bio fetches the profile page and tries three extraction strategies in
// order: an embedded ld+json profile block, the structured description node,
// then the generic meta description. Returns "" when nothing works.
func (e *Enricher) Bio(ctx context.Context, pageURL string) string {
	req, err := httpx.NewRequest(ctx, http.MethodGet, pageURL, nil, e.userAgent)
	if err != nil {
		return ""
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return ""
	}

	if bio := fromJSONLD(doc); bio != "" {
		return bio
	}
	if bio := clean(doc.Find(`div[data-testid="UserDescription"]`).First().Text()); bio != "" {
		return bio
	}
	if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		return clean(content)
	}
	return ""
}

func fromJSONLD(doc *goquery.Document) string {
	var bio string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := s.Text()
		if !gjson.Valid(raw) {
			return true
		}
		for _, path := range []string{"author.description", "mainEntity.description", "description"} {
			if v := gjson.Get(raw, path); v.Exists() {
				if bio = clean(v.String()); bio != "" {
					return false
				}
			}
		}
		return true
	})
	return bio
}

// clean collapses whitespace and truncates to the display budget.
func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxBioLen {
		s = string(r[:maxBioLen]) + "..."
	}
	return s
}
