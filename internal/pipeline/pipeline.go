package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/renwave/tashare/internal/extract"
	"github.com/renwave/tashare/internal/ingest"
	"github.com/renwave/tashare/internal/model"
	"github.com/renwave/tashare/internal/normalize"
	"github.com/renwave/tashare/internal/report"
	"github.com/renwave/tashare/internal/resolve"
	"github.com/renwave/tashare/internal/worker"
)

// Pipeline orchestrates the complete resolution process: evidence rows in,
// run report out.
type Pipeline struct {
	extractor *extract.Extractor
	canon     *normalize.Canonicalizer
	collapser *normalize.Collapser
	config    *model.Config
}

// NewPipeline creates a new pipeline with the given configuration. The
// taxonomy must already be loaded; a missing taxonomy is not recoverable.
func NewPipeline(cfg *model.Config, tax *normalize.Taxonomy) *Pipeline {
	return &Pipeline{
		extractor: extract.NewExtractor(cfg.Extract),
		canon:     normalize.NewCanonicalizer(tax, cfg.Normalize),
		collapser: normalize.NewCollapser(normalize.DefaultBrandRules()),
		config:    cfg,
	}
}

// labeled is the outcome of labeling a single evidence row. A free-text row
// can yield several states (one per extracted mention) or none at all.
type labeled struct {
	states  []model.ResolvedState
	unknown []model.ReviewEntry
}

// labelJob labels one evidence row. Results land in a preallocated slot so
// the pool's completion order never affects output order.
type labelJob struct {
	pipeline *Pipeline
	row      model.EvidenceRow
	out      []labeled
	index    int
}

type labelResult struct {
	err error
}

func (r labelResult) GetError() error { return r.err }

func (j *labelJob) Execute(ctx context.Context) worker.Result {
	select {
	case <-ctx.Done():
		return labelResult{err: ctx.Err()}
	default:
	}
	j.out[j.index] = j.pipeline.label(j.row)
	return labelResult{}
}

// label turns one evidence row into zero or more resolved states.
func (p *Pipeline) label(row model.EvidenceRow) labeled {
	var out labeled

	switch row.Kind {
	case model.EvidenceStructuredName:
		// Registry rows already carry the agent name verbatim.
		out.states = append(out.states, model.ResolvedState{
			SubjectID: row.SubjectID,
			Agent:     p.collapser.Collapse(row.Text),
			Score:     100,
			Date:      row.Date,
			SourceRef: row.SourceRef,
			Seq:       row.Seq,
		})

	case model.EvidenceFreeText:
		for _, m := range p.extractor.Extract(row.Text) {
			canonical, score := p.canon.Canonicalize(m.Brand)
			agent := canonical
			if canonical != model.UnknownAgent {
				agent = p.collapser.Collapse(canonical)
			} else {
				out.unknown = append(out.unknown, model.ReviewEntry{
					SubjectID: row.SubjectID,
					RawName:   m.Brand,
					SourceRef: row.SourceRef,
				})
			}
			out.states = append(out.states, model.ResolvedState{
				SubjectID: row.SubjectID,
				Agent:     agent,
				Score:     score,
				Date:      row.Date,
				SourceRef: row.SourceRef,
				Seq:       row.Seq,
			})
		}
	}

	return out
}

// Run executes the full pipeline over the ingested evidence. The ingest
// result supplies document and skip counters for the run summary.
func (p *Pipeline) Run(ctx context.Context, in *ingest.Result) (*model.RunReport, error) {
	rows := in.Rows
	for i := range rows {
		rows[i].Seq = i
	}

	slots := make([]labeled, len(rows))
	jobs := make([]worker.Job, len(rows))
	for i := range rows {
		jobs[i] = &labelJob{pipeline: p, row: rows[i], out: slots, index: i}
	}
	pool := worker.NewPool(p.config.Concurrency.Workers)
	for _, res := range pool.Process(ctx, jobs) {
		if err := res.GetError(); err != nil {
			return nil, fmt.Errorf("label evidence: %w", err)
		}
	}
	// A cancelled pool drops unstarted jobs; a partial report must not
	// pass for a complete one.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("label evidence: %w", err)
	}

	// Flatten in row order so state sequence numbers mirror ingestion order.
	var states []model.ResolvedState
	var review []model.ReviewEntry
	seenReview := make(map[string]bool)
	seq := 0
	for _, slot := range slots {
		for _, st := range slot.states {
			st.Seq = seq
			seq++
			states = append(states, st)
		}
		for _, entry := range slot.unknown {
			key := entry.SubjectID + "|" + strings.ToLower(entry.RawName)
			if seenReview[key] {
				continue
			}
			seenReview[key] = true
			review = append(review, entry)
		}
	}

	bySubject := make(map[string][]model.ResolvedState)
	for _, st := range states {
		bySubject[st.SubjectID] = append(bySubject[st.SubjectID], st)
	}

	subjects := make([]string, 0, len(bySubject))
	for id := range bySubject {
		subjects = append(subjects, id)
	}
	sort.Strings(subjects)

	var (
		timelines   []model.SubjectTimeline
		transitions []model.Transition
		current     []model.CurrentState
		unknowns    int
	)
	for _, id := range subjects {
		timeline, err := resolve.Resolve(bySubject[id])
		if err != nil {
			// Grouping guarantees at least one state per subject.
			return nil, fmt.Errorf("resolve %s: %w", id, err)
		}

		points := make([]model.TimelinePoint, 0, len(timeline.States))
		for _, st := range timeline.States {
			if st.Agent == model.UnknownAgent {
				unknowns++
			}
			points = append(points, model.TimelinePoint{
				Date:  st.Date,
				Label: st.Agent,
				Score: st.Score,
			})
		}
		timelines = append(timelines, model.SubjectTimeline{
			SubjectID: id,
			Points:    points,
		})

		transitions = append(transitions, resolve.DetectTransitions(timeline.States)...)

		if label, ok := currentLabel(timeline); ok {
			current = append(current, model.CurrentState{SubjectID: id, Label: label})
		}
	}

	sort.Slice(review, func(i, j int) bool {
		if review[i].SubjectID != review[j].SubjectID {
			return review[i].SubjectID < review[j].SubjectID
		}
		return review[i].RawName < review[j].RawName
	})

	share := report.Aggregate(current)

	return &model.RunReport{
		GeneratedAt: time.Now().UTC(),
		Share:       share,
		Timelines:   timelines,
		Transitions: transitions,
		Review:      review,
		Summary: model.RunSummary{
			Documents:       in.Documents,
			Rows:            len(rows),
			SkippedRows:     in.Skipped,
			Subjects:        len(subjects),
			UnknownMentions: unknowns,
			Transitions:     len(transitions),
			SkippedSamples:  in.SkippedSamples,
		},
	}, nil
}

// currentLabel returns the subject's most recent known agent. Subjects whose
// entire timeline is unresolved carry no weight in the share table.
func currentLabel(t resolve.Timeline) (string, bool) {
	for i := len(t.States) - 1; i >= 0; i-- {
		if t.States[i].Agent != model.UnknownAgent {
			return t.States[i].Agent, true
		}
	}
	return "", false
}
