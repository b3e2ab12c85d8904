package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Deathbringer98/Username-Sniffer/internal/scan"
)

// Export writes the aggregate to path, picking the format by extension:
// .csv, .xlsx, or JSON for anything else.
func Export(path string, result *scan.ScanResult) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeCSV(path, result)
	case ".xlsx":
		return writeXLSX(path, result)
	default:
		return writeJSON(path, result)
	}
}

type jsonSite struct {
	Site    string `json:"site"`
	Verdict string `json:"verdict"`
	URL     string `json:"url"`
}

type jsonReport struct {
	Bio   string     `json:"bio,omitempty"`
	Sites []jsonSite `json:"sites"`
}

func writeJSON(path string, result *scan.ScanResult) error {
	payload := make(map[string]jsonReport, len(result.Handles))
	for _, handle := range result.Handles {
		rep := result.Report(handle)
		if rep == nil {
			continue
		}

		sites := make([]jsonSite, 0, len(rep.Results))
		for _, res := range rep.Results {
			sites = append(sites, jsonSite{Site: res.Site, Verdict: res.Verdict.String(), URL: res.URL})
		}
		payload[handle] = jsonReport{Bio: rep.Bio, Sites: sites}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

var exportHeader = []string{"Username", "Site", "Verdict", "URL"}

func writeCSV(path string, result *scan.ScanResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for _, handle := range result.Handles {
		rep := result.Report(handle)
		if rep == nil {
			continue
		}
		for _, res := range rep.Results {
			if err := w.Write([]string{handle, res.Site, res.Verdict.String(), res.URL}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(path string, result *scan.ScanResult) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	row := 1
	if err := setRow(f, sheet, row, exportHeader); err != nil {
		return err
	}
	for _, handle := range result.Handles {
		rep := result.Report(handle)
		if rep == nil {
			continue
		}
		for _, res := range rep.Results {
			row++
			if err := setRow(f, sheet, row, []string{handle, res.Site, res.Verdict.String(), res.URL}); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	return f.SetSheetRow(sheet, cell, &values)
}
