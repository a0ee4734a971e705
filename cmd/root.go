// Package cmd provides the codetour command line.
//
// Configuration is read, highest priority first, from flags, CODETOUR_*
// environment variables (CODETOUR_SERVER_PORT, CODETOUR_LOG_LEVEL, ...) and
// a YAML file: --config, else CODETOUR_CONFIG_FILE, else .codetour.yml in
// the working directory.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/codetour/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codetour",
	Short: "Serve code tours: prose that highlights lines of code",
	Long: `codetour serves tours written as YAML documents. Each tour pairs prose
steps with code examples; hovering or focusing a step highlights its lines
in the code viewer next to it.

Quick Start:
  codetour serve                      Serve the tours under ./tours
  codetour render two-column-demo     Render a tour to static HTML
  codetour lines "3,5-8,12"           Check a line range
  codetour fetch two-column-demo      Check that a tour's files load`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// --log_level and --log-level are the same flag
	rootCmd.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .codetour.yml, can also use CODETOUR_CONFIG_FILE env var)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("content-root", ".", "directory holding tours and code examples")

	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("content.root", flags.Lookup("content-root"))
}

// initConfig picks the config file and enables CODETOUR_ environment
// overrides. A missing file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".codetour")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
