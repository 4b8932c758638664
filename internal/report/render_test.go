package report

import (
	"strings"
	"testing"
	"time"

	"github.com/renwave/tashare/internal/model"
)

func TestWriteShareCSV(t *testing.T) {
	r := NewRenderer(0)

	ms := model.MarketShare{
		Rows: []model.ShareRow{
			{Label: "Computershare", Count: 2, Percentage: 66.67},
			{Label: "Broadridge", Count: 1, Percentage: 33.33},
		},
		Total: 3,
	}

	var buf strings.Builder
	if err := r.WriteShareCSV(&buf, ms); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "label,count,percentage" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "Computershare,2,66.67" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestWriteTransitionsCSV(t *testing.T) {
	r := NewRenderer(0)

	date, _ := time.Parse(model.DateLayout, "2022-06-01")
	var buf strings.Builder
	err := r.WriteTransitionsCSV(&buf, []model.Transition{
		{SubjectID: "0001234567", FromAgent: "Computershare", ToAgent: "Broadridge", Date: date},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "0001234567,Computershare,Broadridge,2022-06-01") {
		t.Errorf("unexpected CSV: %q", buf.String())
	}
}

func TestWriteSummary_TruncatesToTopN(t *testing.T) {
	r := NewRenderer(1)

	report := &model.RunReport{
		Share: model.MarketShare{
			Rows: []model.ShareRow{
				{Label: "Computershare", Count: 5, Percentage: 83.33},
				{Label: "Equiniti", Count: 1, Percentage: 16.67},
			},
			Total: 6,
		},
	}

	var buf strings.Builder
	r.WriteSummary(&buf, report)

	out := buf.String()
	if !strings.Contains(out, "Computershare") {
		t.Error("top row missing from summary")
	}
	if strings.Contains(out, "Equiniti") {
		t.Error("summary should truncate to top 1 row")
	}
	if !strings.Contains(out, "Distinct issuers:   6") {
		t.Errorf("summary must report the full total:\n%s", out)
	}
}
