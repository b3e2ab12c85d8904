package sites

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
)

// Placeholder is the handle substitution marker inside a URL template.
const Placeholder = "{}"

// highSignalNames are the platforms whose hits trigger bio enrichment.
// Keyed by profile name on purpose; URL text matching would let an unrelated
// template containing "x.com" trigger enrichment.
var highSignalNames = map[string]struct{}{
	"twitter":   {},
	"twitter/x": {},
	"x":         {},
}

// Profile describes how to probe and classify one platform.
// Immutable once loaded; all patterns are compiled at load time.
type Profile struct {
	Name        string
	URLTemplate string
	Method      string
	Skip        bool
	HighSignal  bool

	NotFound    *regexp2.Regexp
	BadRedirect *regexp2.Regexp
	MustContain *regexp2.Regexp
}

// ProbeURL substitutes the handle into the profile's URL template.
func (p *Profile) ProbeURL(handle string) string {
	return strings.ReplaceAll(p.URLTemplate, Placeholder, handle)
}

// HasBodyRules reports whether classification may need the response body.
func (p *Profile) HasBodyRules() bool {
	return p.NotFound != nil || p.MustContain != nil
}

type record struct {
	URL              string `json:"url"`
	Method           string `json:"method"`
	Skip             bool   `json:"skip"`
	HighSignal       bool   `json:"high_signal"`
	NotFoundRegex    string `json:"not_found_regex"`
	BadRedirectRegex string `json:"bad_redirect_regex"`
	MustContainRegex string `json:"must_contain_regex"`
}

// Catalog is the frozen set of site profiles for a run.
type Catalog struct {
	profiles map[string]*Profile
}

//go:embed sites.json
var defaultCatalog []byte

// Load reads and compiles a catalog file. Any malformed record is fatal here,
// before the first probe is issued.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read site catalog")
	}
	return Parse(raw)
}

// LoadDefault compiles the catalog shipped with the binary.
func LoadDefault() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a catalog from JSON: an object mapping site name -> record.
// A top-level "$schema" entry is ignored.
func Parse(raw []byte) (*Catalog, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errors.Wrap(err, "parse site catalog")
	}

	out := make(map[string]*Profile, len(entries))
	for name, msg := range entries {
		if name == "$schema" {
			continue
		}

		var rec record
		if err := json.Unmarshal(msg, &rec); err != nil {
			return nil, errors.Wrapf(err, "site %q", name)
		}

		p, err := newProfile(name, rec)
		if err != nil {
			return nil, err
		}
		out[name] = p
	}

	if len(out) == 0 {
		return nil, errors.New("site catalog is empty")
	}
	return &Catalog{profiles: out}, nil
}

func newProfile(name string, rec record) (*Profile, error) {
	if rec.URL == "" {
		return nil, errors.Errorf("site %q: missing url", name)
	}
	if !strings.Contains(rec.URL, Placeholder) {
		return nil, errors.Errorf("site %q: url template has no %s placeholder", name, Placeholder)
	}

	method := strings.ToUpper(strings.TrimSpace(rec.Method))
	if method == "" {
		method = http.MethodHead
	}

	_, highSignal := highSignalNames[strings.ToLower(name)]

	p := &Profile{
		Name:        name,
		URLTemplate: rec.URL,
		Method:      method,
		Skip:        rec.Skip,
		HighSignal:  rec.HighSignal || highSignal,
	}

	var err error
	if p.NotFound, err = compile(name, "not_found_regex", rec.NotFoundRegex); err != nil {
		return nil, err
	}
	if p.BadRedirect, err = compile(name, "bad_redirect_regex", rec.BadRedirectRegex); err != nil {
		return nil, err
	}
	if p.MustContain, err = compile(name, "must_contain_regex", rec.MustContainRegex); err != nil {
		return nil, err
	}
	return p, nil
}

func compile(site, field, expr string) (*regexp2.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp2.Compile(expr, regexp2.IgnoreCase)
	if err != nil {
		return nil, errors.Wrapf(err, "site %q: compile %s", site, field)
	}
	return re, nil
}

// Len reports the number of profiles in the catalog, skipped ones included.
func (c *Catalog) Len() int {
	return len(c.profiles)
}

// Get returns the named profile, or nil.
func (c *Catalog) Get(name string) *Profile {
	return c.profiles[name]
}

// Include returns the name-sorted profile set for a scan. Profiles marked
// skip are excluded unless includeSkipped is set.
func (c *Catalog) Include(includeSkipped bool) []*Profile {
	out := make([]*Profile, 0, len(c.profiles))
	for _, p := range c.profiles {
		if p.Skip && !includeSkipped {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
