package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/logging"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// Version is set at build time
var Version = "dev"

var (
	cfgFile    string
	verbose    bool
	jsonOutput bool
	jsonPath   string
	mdPath     string

	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fiforecast",
	Short: "fiforecast - Ethiopia financial inclusion indicators, trends and forecasts",
	Long: `fiforecast reads the unified financial inclusion dataset (observations,
events and impact links) and reports key metrics, trends, linear forecasts
and scenario projections toward the account ownership target.

Forecasts are straight-line extrapolations of observed values. Scenarios
scale the baseline by fixed multipliers; they are not causal estimates.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(verbose || viper.GetBool("output.verbose"))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of fiforecast.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fiforecast %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.fiforecast/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	flags.StringVar(&mdPath, "md", "", "also write the report as Markdown to this path")
	flags.StringVar(&jsonPath, "json-out", "", "also write the report as JSON to this path")
	flags.String("enriched", "", "enriched unified table, tried first")
	flags.String("raw", "", "raw unified table, used when the enriched one is absent")
	flags.String("forecasts", "", "precomputed forecast table")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("data.enriched_path", flags.Lookup("enriched"))
	_ = viper.BindPFlag("data.raw_path", flags.Lookup("raw"))
	_ = viper.BindPFlag("data.forecast_path", flags.Lookup("forecasts"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".fiforecast"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match FIFORECAST_*, e.g. FIFORECAST_LLM_API_KEY
	viper.SetEnvPrefix("FIFORECAST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every default key so env vars can override any of them
func setDefaults() {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	flatten("", tree, viper.SetDefault)
	viper.SetDefault("llm.api_key", "")
}

func flatten(prefix string, tree map[string]any, set func(string, any)) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flatten(key, sub, set)
			continue
		}
		set(key, v)
	}
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	if cfg.LLM.APIKey == "" && strings.EqualFold(cfg.LLM.Provider, "openai") {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.BaseURL == "" && strings.EqualFold(cfg.LLM.Provider, "ollama") {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	return cfg, nil
}
