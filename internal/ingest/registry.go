package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/renwave/tashare/internal/model"
)

// Registry TSV layout, one directory per quarter ("2006-Q1" ... "2025-Q1"):
//
//	TA_SUBMISSION.tsv          ACCESSION_NUMBER, CIK, FILING_DATE, SUBMISSIONTYPE
//	TA_SERVICE_COMPANIES.tsv   ACCESSION_NUMBER, ENTITYNAME
//
// Registrations (TA-1 and amendments) join service-company names on the
// accession number, yielding one STRUCTURED_NAME evidence row per match.
const (
	submissionFile = "TA_SUBMISSION.tsv"
	serviceFile    = "TA_SERVICE_COMPANIES.tsv"
)

// registrationForms are the submission types that establish an agent
// relationship.
var registrationForms = map[string]bool{"TA-1": true, "TA-1/A": true}

type submission struct {
	cik  string
	date time.Time
}

// ReadRegistryQuarters walks the quarter subdirectories of root in sorted
// order and merges each quarter's registrations. Directories missing
// either TSV are skipped silently, matching sparse historical dumps.
func ReadRegistryQuarters(root string) (*Result, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read registry root: %w", err)
	}

	result := &Result{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		qdir := filepath.Join(root, entry.Name())
		if !fileExists(filepath.Join(qdir, submissionFile)) || !fileExists(filepath.Join(qdir, serviceFile)) {
			continue
		}

		quarter, err := readQuarter(qdir)
		if err != nil {
			return nil, fmt.Errorf("quarter %s: %w", entry.Name(), err)
		}
		result.Merge(quarter)
	}
	return result, nil
}

func readQuarter(qdir string) (*Result, error) {
	result := &Result{}

	submissions, err := readSubmissions(filepath.Join(qdir, submissionFile), result)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(qdir, serviceFile))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", serviceFile, err)
	}
	defer func() { _ = f.Close() }()

	r := newTSVReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", serviceFile, err)
	}
	cols, err := columnIndex(header, "ACCESSION_NUMBER", "ENTITYNAME")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", serviceFile, err)
	}

	result.Documents++
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.skip("service row: %v", err)
			continue
		}

		accession := rec[cols["ACCESSION_NUMBER"]]
		sub, ok := submissions[accession]
		if !ok {
			continue // not a TA-1 registration this quarter
		}

		row, err := model.NewEvidenceRow(sub.cik, sub.date, accession, rec[cols["ENTITYNAME"]], model.EvidenceStructuredName)
		if err != nil {
			result.skip("%v", err)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

// readSubmissions indexes a quarter's TA-1 registrations by accession
func readSubmissions(path string, result *Result) (map[string]submission, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", submissionFile, err)
	}
	defer func() { _ = f.Close() }()

	r := newTSVReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", submissionFile, err)
	}
	cols, err := columnIndex(header, "ACCESSION_NUMBER", "CIK", "FILING_DATE", "SUBMISSIONTYPE")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", submissionFile, err)
	}

	result.Documents++
	submissions := make(map[string]submission)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.skip("submission row: %v", err)
			continue
		}

		if !registrationForms[rec[cols["SUBMISSIONTYPE"]]] {
			continue
		}

		date, err := time.Parse(model.DateLayout, rec[cols["FILING_DATE"]])
		if err != nil {
			result.skip("submission %s: bad filing date %q", rec[cols["ACCESSION_NUMBER"]], rec[cols["FILING_DATE"]])
			continue
		}

		submissions[rec[cols["ACCESSION_NUMBER"]]] = submission{
			cik:  rec[cols["CIK"]],
			date: date,
		}
	}
	return submissions, nil
}

func newTSVReader(f *os.File) *csv.Reader {
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	return r
}

// columnIndex maps required column names to their positions
func columnIndex(header []string, required ...string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return index, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
