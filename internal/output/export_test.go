package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deathbringer98/Username-Sniffer/internal/classify"
	"github.com/Deathbringer98/Username-Sniffer/internal/probe"
	"github.com/Deathbringer98/Username-Sniffer/internal/scan"
)

func sampleResult() *scan.ScanResult {
	return &scan.ScanResult{
		Handles: []string{"alice"},
		Reports: map[string]*scan.HandleReport{
			"alice": {
				Handle: "alice",
				Bio:    "Coffee and code.",
				Results: []probe.Result{
					{Site: "x", Handle: "alice", Verdict: classify.Exists, URL: "https://x.com/alice", Status: 200},
					{Site: "gone", Handle: "alice", Verdict: classify.NotFound, URL: "https://gone.com/alice", Status: 404},
				},
			},
		},
	}
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Export(path, sampleResult()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Username", "Site", "Verdict", "URL"}, rows[0])
	assert.Equal(t, []string{"alice", "x", "exists", "https://x.com/alice"}, rows[1])
	assert.Equal(t, []string{"alice", "gone", "not_found", "https://gone.com/alice"}, rows[2])
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Export(path, sampleResult()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var payload map[string]struct {
		Bio   string `json:"bio"`
		Sites []struct {
			Site    string `json:"site"`
			Verdict string `json:"verdict"`
			URL     string `json:"url"`
		} `json:"sites"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))

	rep, ok := payload["alice"]
	require.True(t, ok)
	assert.Equal(t, "Coffee and code.", rep.Bio)
	require.Len(t, rep.Sites, 2)
	assert.Equal(t, "exists", rep.Sites[0].Verdict)
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Export(path, sampleResult()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
