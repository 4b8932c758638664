package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/renwave/tashare/internal/cache"
	"github.com/renwave/tashare/internal/fetch"
	"github.com/spf13/cobra"
)

var (
	fetchList    string
	fetchDir     string
	fetchWorkers int
	fetchTimeout time.Duration
	noCache      bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download filing documents from EDGAR",
	Long: `Fetch downloads the documents listed in a filings CSV
(cik,accession,url) into a local directory, named so that 'tashare run
--filings' can recover issuer and date from the file name.

Downloads are rate-limited per host, robots.txt aware, retried with
backoff on 429 and 5xx, and cached on disk. Documents already present
are skipped, so an interrupted batch can simply be re-run.

Example:
  tashare fetch --list data/filings.csv --dir data/filings
  tashare fetch --list data/filings.csv --dir data/filings --workers 2`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchList, "list", "", "filings CSV (cik,accession,url)")
	fetchCmd.Flags().StringVar(&fetchDir, "dir", "data/filings", "download directory")
	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", 0, "parallel downloads (0 = config default)")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 0, "per-request timeout (0 = config default)")
	fetchCmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")

	_ = fetchCmd.MarkFlagRequired("list")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if fetchWorkers > 0 {
		cfg.Concurrency.FetchWorkers = fetchWorkers
	}
	if fetchTimeout > 0 {
		cfg.HTTP.Timeout = fetchTimeout
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	filings, err := fetch.ReadFilingsCSV(fetchList)
	if err != nil {
		return err
	}
	if len(filings) == 0 {
		return fmt.Errorf("filings list %s is empty", fetchList)
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Fetching %d filings into %s (%d workers, %.1f req/s)\n",
			len(filings), fetchDir, cfg.Concurrency.FetchWorkers, cfg.RateLimit.RequestsPerSecond)
	}

	client := fetch.NewClient(cfg.HTTP, cfg.RateLimit, store)
	stats, err := client.DownloadAll(context.Background(), filings, fetchDir, cfg.Concurrency.FetchWorkers)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	fmt.Printf("Fetched %d, already present %d, failed %d\n", stats.Fetched, stats.Cached, stats.Failed)
	for _, msg := range stats.Errors {
		fmt.Fprintf(os.Stderr, "  %s\n", msg)
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d downloads failed", stats.Failed)
	}
	return nil
}
