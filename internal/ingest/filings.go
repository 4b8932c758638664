package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/renwave/tashare/internal/extract"
	"github.com/renwave/tashare/internal/model"
)

// ReadFilingsDir reads downloaded filing documents and emits one
// FREE_TEXT evidence row per document, carrying the markup-stripped
// filing text. File names follow the fetcher's convention:
//
//	<cik>_<accession>.htm
//
// where the accession's first eight digits encode the filing date
// (YYYYMMDD, daily-index style). Files that don't parse are counted as
// skipped, never fatal.
func ReadFilingsDir(dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read filings dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".htm", ".html", ".txt":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	result := &Result{}
	for _, name := range names {
		result.Documents++

		cik, accession, date, err := parseFilingName(name)
		if err != nil {
			result.skip("filing %s: %v", name, err)
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			result.skip("filing %s: %v", name, err)
			continue
		}

		text, err := extract.VisibleText(string(raw))
		if err != nil {
			result.skip("filing %s: strip markup: %v", name, err)
			continue
		}

		row, err := model.NewEvidenceRow(cik, date, accession, text, model.EvidenceFreeText)
		if err != nil {
			result.skip("%v", err)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

func parseFilingName(name string) (cik, accession string, date time.Time, err error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	cik, accession, ok := strings.Cut(base, "_")
	if !ok || cik == "" || accession == "" {
		return "", "", time.Time{}, fmt.Errorf("name not in <cik>_<accession> form")
	}

	if len(accession) < 8 {
		return "", "", time.Time{}, fmt.Errorf("accession %q too short for a date", accession)
	}
	date, err = time.Parse("20060102", accession[:8])
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("accession %q: undated", accession)
	}
	return cik, accession, date, nil
}
