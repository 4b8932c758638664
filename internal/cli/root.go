// Package cli wires the tashare commands: run, fetch, share, config.
package cli

import (
	"fmt"
	"os"

	"github.com/renwave/tashare/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tashare",
	Short: "Tashare - transfer-agent market share from SEC filings",
	Long: `Tashare resolves which transfer agent serves each issuer over time and
aggregates the result into a market-share table.

It reads evidence from two kinds of sources: structured TA-1 registry
dumps and free-text issuer filings. Free-text mentions are extracted,
fuzzily canonicalized against a curated agent taxonomy, and collapsed to
parent brands; per-issuer timelines then yield current agents, agent
changes, and market share.

Names that cannot be placed in the taxonomy are never guessed at. They
land in a review list for human curation.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tashare v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.tashare/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.tashare")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TASHARE_*
	viper.SetEnvPrefix("TASHARE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the effective run configuration: defaults overlaid
// with whatever the config file or environment set.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if viper.IsSet("extract.context_radius") {
		cfg.Extract.ContextRadius = viper.GetInt("extract.context_radius")
	}
	if viper.IsSet("extract.vocabulary") {
		cfg.Extract.Vocabulary = viper.GetStringSlice("extract.vocabulary")
	}
	if viper.IsSet("extract.triggers") {
		cfg.Extract.Triggers = viper.GetStringSlice("extract.triggers")
	}
	if viper.IsSet("normalize.similarity_threshold") {
		cfg.Normalize.SimilarityThreshold = viper.GetFloat64("normalize.similarity_threshold")
	}
	if viper.IsSet("normalize.taxonomy_path") {
		cfg.Normalize.TaxonomyPath = viper.GetString("normalize.taxonomy_path")
	}
	if viper.IsSet("http.user_agent") {
		cfg.HTTP.UserAgent = viper.GetString("http.user_agent")
	}
	if viper.IsSet("cache.dir") {
		cfg.Cache.Dir = viper.GetString("cache.dir")
	}
	if viper.IsSet("concurrency.workers") {
		cfg.Concurrency.Workers = viper.GetInt("concurrency.workers")
	}
	if viper.IsSet("concurrency.fetch_workers") {
		cfg.Concurrency.FetchWorkers = viper.GetInt("concurrency.fetch_workers")
	}
	if viper.IsSet("rate_limit.requests_per_second") {
		cfg.RateLimit.RequestsPerSecond = viper.GetFloat64("rate_limit.requests_per_second")
	}
	if viper.IsSet("output.top_n") {
		cfg.Output.TopN = viper.GetInt("output.top_n")
	}
	cfg.Output.Verbose = verbose

	return cfg
}
