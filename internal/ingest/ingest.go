// Package ingest turns on-disk inputs (registry TSV dumps, downloaded
// filings, evidence CSVs) into evidence rows for the pipeline. Malformed
// rows are counted and sampled, never fatal to the batch.
package ingest

import (
	"fmt"

	"github.com/renwave/tashare/internal/model"
)

// sampleLimit caps how many rejection reasons are kept verbatim
const sampleLimit = 5

// Result is the outcome of one ingestion source
type Result struct {
	Rows           []model.EvidenceRow
	Documents      int
	Skipped        int
	SkippedSamples []string
}

func (r *Result) skip(format string, args ...interface{}) {
	r.Skipped++
	if len(r.SkippedSamples) < sampleLimit {
		r.SkippedSamples = append(r.SkippedSamples, fmt.Sprintf(format, args...))
	}
}

// Merge folds another source's result into this one
func (r *Result) Merge(other *Result) {
	r.Rows = append(r.Rows, other.Rows...)
	r.Documents += other.Documents
	r.Skipped += other.Skipped
	for _, s := range other.SkippedSamples {
		if len(r.SkippedSamples) < sampleLimit {
			r.SkippedSamples = append(r.SkippedSamples, s)
		}
	}
}
