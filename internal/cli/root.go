package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ppiankov/politikcred/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile     string
	verbose     bool
	storeDriver string
	storeDSN    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "politikcred",
	Short: "PolitikCred - Promise verification against recorded votes",
	Long: `PolitikCred checks what officials promised against how they voted.

It classifies promises in speeches and manifestos, matches each pending
promise to the most similar recorded action, decides whether the promise
was kept, broken or partially kept, and keeps an append-only credibility
history where every change cites the evidence behind it.

Matching is heuristic. Every verification records its method, score and
threshold so a reader can check the reasoning.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Interrupts cancel the command context so
// runs stop between officials and the scheduler shuts down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and the active matching threshold version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "politikcred %s (thresholds %s)\n", Version, cfg.Matching.ThresholdVersion)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.politikcred/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store-driver", "", "store driver: sqlite3, pgx, memory")
	rootCmd.PersistentFlags().StringVar(&storeDSN, "store-dsn", "", "store data source name (sqlite path or postgres URL)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("store.driver", rootCmd.PersistentFlags().Lookup("store-driver"))
	_ = viper.BindPFlag("store.dsn", rootCmd.PersistentFlags().Lookup("store-dsn"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".politikcred"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match POLITIKCRED_* (store.dsn -> POLITIKCRED_STORE_DSN)
	viper.SetEnvPrefix("POLITIKCRED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := setDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every leaf of cfg as a viper default. Unmarshal only
// sees keys viper knows about, so this is what lets environment variables
// override nested settings.
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	flatten("", tree, v.SetDefault)

	// omitempty keys that still need an environment binding
	for _, key := range []string{"embedding.api_key", "embedding.base_url", "logging.file",
		"http.http_proxy", "http.https_proxy", "http.no_proxy"} {
		v.SetDefault(key, "")
	}
	return nil
}

func flatten(prefix string, tree map[string]interface{}, set func(string, interface{})) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]interface{}); ok {
			flatten(key, sub, set)
			continue
		}
		set(key, val)
	}
}

// loadConfig resolves the effective configuration: flags, then POLITIKCRED_*
// variables, then the config file, then defaults. Provider credentials fall
// back to OPENAI_API_KEY and OLLAMA_BASE_URL.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "ollama":
		if cfg.Embedding.BaseURL == "" {
			cfg.Embedding.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}

	if viper.GetBool("verbose") {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}
