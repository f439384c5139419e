// Package cmd implements the gradeflow command line interface. The
// commands are the surface the batch dispatcher scripts call between
// runs: scanning captured output, querying resume state, recording
// checkpoint checksums, and watching a batch live.
package cmd

import (
	"strings"

	"github.com/gradeflow/gradeflow/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "gradeflow",
	Short: "Resumable state and failure reporting for batch marking runs",
	Long: `Gradeflow tracks which marking tasks completed across interrupted
runs, classifies failures from captured worker output, and produces a
consolidated error report so a re-run retries only what failed.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/gradeflow/gradeflow.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gradeflow")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/gradeflow")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("GRADEFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
