// Package variants generates candidate handle variations from a base handle.
// Pure string transforms; the scan core treats the output as opaque input.
package variants

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
)

var (
	simpleSuffixes = []string{"_", "__", ".", "pro", "real", "hq", "fan", "live"}
	numberSuffixes = []string{"123", "69", "88", "tv", "yt", "x", "official"}
	prefixes       = []string{"the", "real", "mr", "ms", "official"}
)

// Generate derives up to max variations of base. The base itself is always
// the first element; the rest are shuffled before capping.
func Generate(base string, max int) ([]string, error) {
	base = strings.ToLower(strings.TrimSpace(base))
	if base == "" {
		return nil, errors.New("empty handle")
	}
	if max < 1 {
		max = 1
	}

	seen := map[string]struct{}{base: {}}
	var extra []string
	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		extra = append(extra, v)
	}

	suffixes := append([]string{strconv.Itoa(rand.Intn(100))}, numberSuffixes...)
	for y := 1990; y <= 2026; y++ {
		suffixes = append(suffixes, strconv.Itoa(y))
	}
	suffixes = append(suffixes, simpleSuffixes...)

	for _, suffix := range suffixes {
		add(base + suffix)
		add(base + "_" + suffix)
		add(base + "." + suffix)
	}

	if len(base) > 4 {
		mid := len(base) / 2
		add(base[:mid] + "_" + base[mid:])
		add(base[:mid] + "." + base[mid:])
	}

	for _, prefix := range prefixes {
		add(prefix + base)
		add(prefix + "_" + base)
	}

	rand.Shuffle(len(extra), func(i, j int) {
		extra[i], extra[j] = extra[j], extra[i]
	})

	out := append([]string{base}, extra...)
	if len(out) > max {
		out = out[:max]
	}
	return out, nil
}
