// Package cli wires the cobra command tree for the phisheye binary.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/phisheye/phisheye/internal/model"
	"github.com/phisheye/phisheye/internal/store"
)

// Version is the release version, overridden at build time with -ldflags.
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
	noColor bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "phisheye",
	Short: "PhishEye - URL threat scoring",
	Long: `PhishEye scores URLs for phishing risk.

Every URL gets a verdict: SAFE, SUSPICIOUS, or MALICIOUS, with the signals
that drove the decision. Scoring combines a trained classifier over lexical
URL features with a transparent heuristic rule set; deep scans add WHOIS
domain age and redirect-chain probes.

PhishEye is advisory: it flags risk, it does not block anything.`,
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
		fmt.Printf("phisheye v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.phisheye/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

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

		viper.AddConfigPath(home + "/.phisheye")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match PHISHEYE_*
	viper.SetEnvPrefix("PHISHEYE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the runtime configuration: defaults, then config file,
// then environment.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: ignoring malformed config %s: %v\n", path, err)
				cfg = model.DefaultConfig()
			}
		}
	}

	if uri := viper.GetString("mongo_uri"); uri != "" {
		cfg.Store.MongoURI = uri
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Advice.APIKey = key
	}

	cfg.Output.Verbose = verbose
	cfg.Output.NoColor = noColor

	return cfg
}

// openStore selects the persistence collaborator: MongoDB when a URI is
// configured, process memory otherwise.
func openStore(ctx context.Context, cfg *model.Config) (store.Store, error) {
	if cfg.Store.MongoURI == "" {
		return store.NewMemoryStore(), nil
	}

	st, err := store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Using MongoDB store: %s\n", cfg.Store.Database)
	}
	return st, nil
}
