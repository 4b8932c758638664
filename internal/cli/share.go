package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/renwave/tashare/internal/normalize"
	"github.com/renwave/tashare/internal/pipeline"
	"github.com/renwave/tashare/internal/report"
	"github.com/spf13/cobra"
)

// shareCmd represents the share command
var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Print the market-share table only",
	Long: `Share runs the resolution pipeline over the given sources and writes
the market-share table as CSV to stdout, nothing else. Useful for piping
into other tools.

Example:
  tashare share --registry data/registry
  tashare share --registry data/registry --top 5 | column -s, -t`,
	RunE: runShare,
}

func init() {
	rootCmd.AddCommand(shareCmd)

	shareCmd.Flags().StringVar(&registryDir, "registry", "", "directory of quarterly TA-1 registry TSV dumps")
	shareCmd.Flags().StringVar(&filingsDir, "filings", "", "directory of downloaded filing documents")
	shareCmd.Flags().StringVar(&evidenceCSV, "evidence", "", "evidence CSV file")
	shareCmd.Flags().StringVar(&taxonomyAt, "taxonomy", "", "agent taxonomy YAML (default: from config)")
	shareCmd.Flags().IntVar(&topN, "top", 0, "rows to print (0 = all)")
}

func runShare(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if taxonomyAt != "" {
		cfg.Normalize.TaxonomyPath = taxonomyAt
	}

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

	rep, err := pipeline.NewPipeline(cfg, tax).Run(context.Background(), in)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	share := rep.Share
	if topN > 0 {
		share = report.Top(share, topN)
	}
	return report.NewRenderer(cfg.Output.TopN).WriteShareCSV(os.Stdout, share)
}
