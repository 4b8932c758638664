package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/renwave/tashare/internal/ingest"
	"github.com/renwave/tashare/internal/llm"
	"github.com/renwave/tashare/internal/model"
	"github.com/renwave/tashare/internal/normalize"
	"github.com/renwave/tashare/internal/pipeline"
	"github.com/renwave/tashare/internal/report"
	"github.com/spf13/cobra"
)

var (
	registryDir string
	filingsDir  string
	evidenceCSV string
	outDir      string
	taxonomyAt  string
	topN        int
	runWorkers  int
	threshold   float64
	llmEnabled  bool
	llmModel    string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolve evidence into timelines, transitions and market share",
	Long: `Run executes the full resolution pipeline:
- Ingest registry TSV quarters, downloaded filings, and evidence CSVs
- Extract agent mentions from free text
- Canonicalize names against the agent taxonomy
- Collapse subsidiaries onto parent brands
- Build per-issuer timelines, detect agent changes
- Aggregate current agents into a market-share table

Outputs land under --out: report.json, market_share.csv, timelines.csv,
transitions.csv, and review/unknown_agents.csv for names that need
human curation.

Example:
  tashare run --registry data/registry --out out
  tashare run --filings data/filings --evidence extra.csv
  tashare run --registry data/registry --llm --llm-model gpt-4o-mini`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&registryDir, "registry", "", "directory of quarterly TA-1 registry TSV dumps")
	runCmd.Flags().StringVar(&filingsDir, "filings", "", "directory of downloaded filing documents")
	runCmd.Flags().StringVar(&evidenceCSV, "evidence", "", "evidence CSV file (subject_id,date,source_ref,text,kind)")
	runCmd.Flags().StringVar(&outDir, "out", "out", "output directory")
	runCmd.Flags().StringVar(&taxonomyAt, "taxonomy", "", "agent taxonomy YAML (default: from config)")
	runCmd.Flags().IntVar(&topN, "top", 0, "market-share rows to print (0 = config default)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "extraction workers (0 = config default)")
	runCmd.Flags().Float64Var(&threshold, "threshold", 0, "similarity threshold 0-100 (0 = config default)")

	runCmd.Flags().BoolVar(&llmEnabled, "llm", false, "draft taxonomy suggestions for the review list")
	runCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if taxonomyAt != "" {
		cfg.Normalize.TaxonomyPath = taxonomyAt
	}
	if topN > 0 {
		cfg.Output.TopN = topN
	}
	if runWorkers > 0 {
		cfg.Concurrency.Workers = runWorkers
	}
	if threshold > 0 {
		cfg.Normalize.SimilarityThreshold = threshold
	}
	if llmEnabled {
		cfg.LLM.Provider = "openai"
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
	}

	// A missing or malformed taxonomy is not recoverable: every mention
	// would land in the review list and the share table would be noise.
	tax, err := normalize.LoadTaxonomy(cfg.Normalize.TaxonomyPath)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}

	in, err := gatherEvidence(cfg)
	if err != nil {
		return err
	}
	if len(in.Rows) == 0 {
		return fmt.Errorf("no evidence rows ingested (provide --registry, --filings or --evidence)")
	}

	ctx := context.Background()
	rep, err := pipeline.NewPipeline(cfg, tax).Run(ctx, in)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := writeOutputs(cfg, rep, outDir); err != nil {
		return err
	}

	// Suggestions are advisory and must never fail the run.
	if llmEnabled {
		if err := draftSuggestions(ctx, cfg, tax, rep); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	renderer := report.NewRenderer(cfg.Output.TopN)
	renderer.WriteSummary(os.Stdout, rep)
	return nil
}

// gatherEvidence merges all configured sources in a fixed order so row
// sequence numbers are reproducible across runs.
func gatherEvidence(cfg *model.Config) (*ingest.Result, error) {
	merged := &ingest.Result{}

	if registryDir != "" {
		res, err := ingest.ReadRegistryQuarters(registryDir)
		if err != nil {
			return nil, fmt.Errorf("read registry: %w", err)
		}
		merged.Merge(res)
	}
	if filingsDir != "" {
		res, err := ingest.ReadFilingsDir(filingsDir)
		if err != nil {
			return nil, fmt.Errorf("read filings: %w", err)
		}
		merged.Merge(res)
	}
	if evidenceCSV != "" {
		res, err := ingest.ReadEvidenceCSV(evidenceCSV)
		if err != nil {
			return nil, fmt.Errorf("read evidence: %w", err)
		}
		merged.Merge(res)
	}

	return merged, nil
}

func writeOutputs(cfg *model.Config, rep *model.RunReport, dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, "review"), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	renderer := report.NewRenderer(cfg.Output.TopN)
	if err := renderer.RenderJSON(rep, filepath.Join(dir, "report.json")); err != nil {
		return err
	}

	files := []struct {
		path  string
		write func(f *os.File) error
	}{
		{filepath.Join(dir, "market_share.csv"), func(f *os.File) error {
			return renderer.WriteShareCSV(f, rep.Share)
		}},
		{filepath.Join(dir, "timelines.csv"), func(f *os.File) error {
			return renderer.WriteTimelinesCSV(f, rep.Timelines)
		}},
		{filepath.Join(dir, "transitions.csv"), func(f *os.File) error {
			return renderer.WriteTransitionsCSV(f, rep.Transitions)
		}},
		{filepath.Join(dir, "review", "unknown_agents.csv"), func(f *os.File) error {
			return renderer.WriteReviewCSV(f, rep.Review)
		}},
	}
	for _, out := range files {
		f, err := os.Create(out.path)
		if err != nil {
			return fmt.Errorf("create %s: %w", out.path, err)
		}
		if err := out.write(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", out.path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", out.path, err)
		}
	}
	return nil
}

func draftSuggestions(ctx context.Context, cfg *model.Config, tax *normalize.Taxonomy, rep *model.RunReport) error {
	assistant, err := llm.NewAssistant(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return err
	}
	draft, err := assistant.Draft(ctx, rep.Review, tax.CanonicalNames())
	if err != nil {
		return err
	}
	if draft == "" {
		return nil
	}

	path := filepath.Join(outDir, "review", "suggestions.txt")
	if err := os.WriteFile(path, []byte(draft+"\n"), 0644); err != nil {
		return fmt.Errorf("write suggestions: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Review suggestions written to %s\n", path)
	}
	return nil
}
