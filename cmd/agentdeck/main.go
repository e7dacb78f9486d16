// Command agentdeck is the native backend for the Agent Deck desktop
// app: it scans projects, ranks the item catalog against the detected
// profile, and serves suggestions over a localhost API or directly on
// the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentdeckhq/agentdeck/pkg/config"
	"github.com/agentdeckhq/agentdeck/pkg/logger"
	"github.com/agentdeckhq/agentdeck/pkg/presenter"
)

func init() {
	viper.SetEnvPrefix("AGENTDECK")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.agentdeck")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't).
	_ = viper.ReadInConfig()

	config.SetDefaults()
}

var rootCmd = &cobra.Command{
	Use:   "agentdeck",
	Short: "Agent Deck backend: project-aware agent, skill, and team suggestions",
	Long: `Agentdeck scans a project directory, builds a profile of its languages,
frameworks, and tooling, and ranks the item catalog against that profile
to suggest the agents, skills, and teams that fit the project best.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

// bindPersistentFlags binds the root flag set into viper so flags,
// env vars, and the config file resolve through one lookup path.
func bindPersistentFlags(fs *pflag.FlagSet) {
	viper.BindPFlag("log_level", fs.Lookup("log-level"))
	viper.BindPFlag("log_format", fs.Lookup("log-format"))
	viper.BindPFlag("db_path", fs.Lookup("db-path"))
	viper.BindPFlag("quiet", fs.Lookup("quiet"))
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt or json)")
	rootCmd.PersistentFlags().String("db-path", "", "Path to the local database (default ~/.agentdeck/agentdeck.db)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")
	bindPersistentFlags(rootCmd.PersistentFlags())

	if err := rootCmd.Execute(); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
