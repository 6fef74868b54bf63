// Root command and shared configuration for the jtl CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bgoodspeed/jtl/watch"
)

// Configuration keys. Each is settable as a flag, as a JTL_* environment
// variable, or in the --config file; flags win over the environment,
// the environment wins over the file.
const (
	cfgKeyDelimiter     = "delimiter"
	cfgKeyLogLevel      = "log-level"
	cfgKeyLogFormat     = "log-format"
	cfgKeyWatchDebounce = "watch-debounce"
)

var (
	flagConfig string

	cfg    = viper.New()
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "jtl",
	Short: "jtl transforms JSON documents with declarative jq mappings",
	Long: `jtl applies ordered src -> dst mappings to JSON, JSONC, YAML, and TOML
documents. Each mapping evaluates a jq expression against the source
document and writes the results into the destination, either replacing
the value at the destination path or merging into it. Chains run a
sequence of mapping specs, feeding each step's output into the next.`,
	// Do not print usage on errors returned by subcommands.
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default: none)")
	pf.String(cfgKeyLogLevel, "info", "log level (debug, info, warn, error)")
	pf.String(cfgKeyLogFormat, "text", "log format (text, json)")
	pf.Duration(cfgKeyWatchDebounce, watch.DefaultDebounce, "settle delay before a watch rerun")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup wires the configuration precedence (flags > environment >
// config file > defaults) and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	cfg.SetEnvPrefix("JTL")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()

	if err := cfg.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if flagConfig != "" {
		cfg.SetConfigFile(flagConfig)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	logger = newLogger(cfg.GetString(cfgKeyLogLevel), cfg.GetString(cfgKeyLogFormat), os.Stderr)
	return nil
}
