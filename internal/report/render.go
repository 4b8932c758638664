package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/renwave/tashare/internal/model"
)

// Renderer writes run outputs. JSON carries the whole report; the CSV
// renderers mirror the individual output tables for spreadsheet use.
type Renderer struct {
	topN int
}

// NewRenderer creates a renderer; topN limits the printed share table
// (0 = all rows).
func NewRenderer(topN int) *Renderer {
	return &Renderer{topN: topN}
}

// RenderJSON writes the complete run report
func (r *Renderer) RenderJSON(report *model.RunReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteShareCSV writes the market-share table
func (r *Renderer) WriteShareCSV(w io.Writer, ms model.MarketShare) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "count", "percentage"}); err != nil {
		return err
	}
	for _, row := range ms.Rows {
		rec := []string{
			row.Label,
			strconv.Itoa(row.Count),
			strconv.FormatFloat(row.Percentage, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTimelinesCSV writes one row per timeline point
func (r *Renderer) WriteTimelinesCSV(w io.Writer, timelines []model.SubjectTimeline) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"subject_id", "date", "label", "score"}); err != nil {
		return err
	}
	for _, tl := range timelines {
		for _, p := range tl.Points {
			rec := []string{
				tl.SubjectID,
				p.Date.Format(model.DateLayout),
				p.Label,
				strconv.FormatFloat(p.Score, 'f', 1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTransitionsCSV writes the detected agent changes
func (r *Renderer) WriteTransitionsCSV(w io.Writer, transitions []model.Transition) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"subject_id", "from_agent", "to_agent", "date"}); err != nil {
		return err
	}
	for _, tr := range transitions {
		rec := []string{tr.SubjectID, tr.FromAgent, tr.ToAgent, tr.Date.Format(model.DateLayout)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReviewCSV writes raw names that failed canonicalization, for
// manual curation back into the taxonomy.
func (r *Renderer) WriteReviewCSV(w io.Writer, review []model.ReviewEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"subject_id", "raw_name", "source_ref"}); err != nil {
		return err
	}
	for _, e := range review {
		if err := cw.Write([]string{e.SubjectID, e.RawName, e.SourceRef}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary prints the human-readable run summary and ranked share
// table to w.
func (r *Renderer) WriteSummary(w io.Writer, report *model.RunReport) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Transfer-Agent Market Snapshot\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")

	share := Top(report.Share, r.topN)
	fmt.Fprintf(w, "  %-40s %10s %8s\n", "Brand", "Issuers", "Share")
	for _, row := range share.Rows {
		fmt.Fprintf(w, "  %-40s %10d %7.2f%%\n", row.Label, row.Count, row.Percentage)
	}

	s := report.Summary
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Distinct issuers:   %d\n", report.Share.Total)
	fmt.Fprintf(w, "  Documents:          %d\n", s.Documents)
	fmt.Fprintf(w, "  Evidence rows:      %d (skipped %d)\n", s.Rows, s.SkippedRows)
	fmt.Fprintf(w, "  Agent changes:      %d\n", s.Transitions)
	fmt.Fprintf(w, "  Unresolved names:   %d\n", s.UnknownMentions)
	for _, sample := range s.SkippedSamples {
		fmt.Fprintf(w, "    skipped: %s\n", sample)
	}
	fmt.Fprintf(w, "\n")
}
