package classify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deathbringer98/Username-Sniffer/internal/sites"
)

func profileWith(t *testing.T, fields string) *sites.Profile {
	t.Helper()

	catalog, err := sites.Parse([]byte(`{"ex": {"url": "https://ex.com/{}"` + fields + `}}`))
	require.NoError(t, err)
	return catalog.Get("ex")
}

func staticBody(body string) BodyFetcher {
	return func() (string, error) { return body, nil }
}

func TestHardNotFoundStatuses(t *testing.T) {
	// 404/410 beat every configured rule.
	p := profileWith(t, `, "must_contain_regex": "profile", "bad_redirect_regex": "login"`)

	for _, status := range []int{404, 410} {
		got := Classify(p, status, "https://ex.com/login", nil, staticBody("profile"))
		assert.Equal(t, NotFound, got, "status %d", status)
	}
}

func TestBadRedirectFinalURL(t *testing.T) {
	p := profileWith(t, `, "bad_redirect_regex": "login", "must_contain_regex": "profile"`)

	got := Classify(p, 200, "https://ex.com/login?next=bob", nil, staticBody("profile"))
	assert.Equal(t, Uncertain, got)
}

func TestBadRedirectHistoryURL(t *testing.T) {
	p := profileWith(t, `, "bad_redirect_regex": "signup"`)

	history := []string{"https://ex.com/alice", "https://ex.com/signup?from=alice"}
	got := Classify(p, 200, "https://ex.com/home", history, staticBody(""))
	assert.Equal(t, Uncertain, got)
}

func TestBadRedirectCaseInsensitive(t *testing.T) {
	p := profileWith(t, `, "bad_redirect_regex": "login"`)

	got := Classify(p, 200, "https://ex.com/LOGIN", nil, nil)
	assert.Equal(t, Uncertain, got)
}

func TestBare200IsUncertain(t *testing.T) {
	p := profileWith(t, ``)

	got := Classify(p, 200, "https://ex.com/alice", nil, staticBody("anything"))
	assert.Equal(t, Uncertain, got)
}

func TestBare200NeverFetchesBody(t *testing.T) {
	p := profileWith(t, ``)

	fetched := false
	Classify(p, 200, "https://ex.com/alice", nil, func() (string, error) {
		fetched = true
		return "", nil
	})
	assert.False(t, fetched, "body must not be fetched without body rules")
}

func TestMustContainOnly(t *testing.T) {
	p := profileWith(t, `, "must_contain_regex": "member since"`)

	assert.Equal(t, Exists, Classify(p, 200, "", nil, staticBody("Member since 2019")))
	assert.Equal(t, Uncertain, Classify(p, 200, "", nil, staticBody("welcome page")))
}

func TestNotFoundPatternOnly(t *testing.T) {
	p := profileWith(t, `, "not_found_regex": "no such user"`)

	assert.Equal(t, NotFound, Classify(p, 200, "", nil, staticBody("No such user here")))
	assert.Equal(t, Exists, Classify(p, 200, "", nil, staticBody("profile of alice")))
}

func TestNotFoundBeatsMustContain(t *testing.T) {
	p := profileWith(t, `, "not_found_regex": "gone", "must_contain_regex": "profile"`)

	got := Classify(p, 200, "", nil, staticBody("profile is gone"))
	assert.Equal(t, NotFound, got)
}

func TestBodyFetchErrorDegradesToUncertain(t *testing.T) {
	p := profileWith(t, `, "must_contain_regex": "profile"`)

	got := Classify(p, 200, "", nil, func() (string, error) {
		return "", errors.New("read reset")
	})
	assert.Equal(t, Uncertain, got)
}

func TestAmbiguousStatuses(t *testing.T) {
	p := profileWith(t, `, "not_found_regex": "gone"`)

	for _, status := range []int{301, 302, 303, 307, 308, 401, 403, 405, 429, 500, 502, 503} {
		got := Classify(p, status, "https://ex.com/alice", nil, staticBody("gone"))
		assert.Equal(t, Uncertain, got, "status %d", status)
	}
}

func TestUnrecognizedStatusIsUncertain(t *testing.T) {
	p := profileWith(t, ``)

	for _, status := range []int{100, 201, 204, 418, 451} {
		got := Classify(p, status, "", nil, nil)
		assert.Equal(t, Uncertain, got, "status %d", status)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	p := profileWith(t, `, "must_contain_regex": "profile"`)

	first := Classify(p, 200, "https://ex.com/alice", nil, staticBody("a profile"))
	second := Classify(p, 200, "https://ex.com/alice", nil, staticBody("a profile"))
	assert.Equal(t, first, second)
}

func TestVerdictText(t *testing.T) {
	assert.Equal(t, "exists", Exists.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "uncertain", Uncertain.String())

	var v Verdict
	require.NoError(t, v.UnmarshalText([]byte("not_found")))
	assert.Equal(t, NotFound, v)
}
