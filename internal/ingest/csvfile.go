package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/renwave/tashare/internal/model"
)

// ReadEvidenceCSV reads pre-extracted evidence rows from a CSV with the
// columns subject_id, date, source_ref, text, kind. This is the format
// the pipeline itself emits, so prior runs can be re-aggregated without
// re-parsing filings.
func ReadEvidenceCSV(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open evidence csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header, "subject_id", "date", "source_ref", "text", "kind")
	if err != nil {
		return nil, fmt.Errorf("evidence csv: %w", err)
	}

	result := &Result{Documents: 1}
	line := 1
	for {
		rec, err := r.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			result.skip("line %d: %v", line, err)
			continue
		}

		date, err := time.Parse(model.DateLayout, rec[cols["date"]])
		if err != nil {
			result.skip("line %d: bad date %q", line, rec[cols["date"]])
			continue
		}

		row, err := model.NewEvidenceRow(
			rec[cols["subject_id"]],
			date,
			rec[cols["source_ref"]],
			rec[cols["text"]],
			model.EvidenceKind(rec[cols["kind"]]),
		)
		if err != nil {
			result.skip("line %d: %v", line, err)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}
