package cmd

import (
	"os"
	"time"

	coreconfig "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/core/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// flag overrides applied on top of the environment
var (
	flagDebug    bool
	flagPort     string
	flagDBDriver string
	flagDBName   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "poster",
	Short: "Recurring social post automation",
	Long: `Creates recurring post automations, materializes their posts ahead of time
with AI generated content and publishes them to LinkedIn when they come due.`,
	SilenceUsage: true,
}

func init() {
	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig)
}

func initFlags() {
	rootCmd.PersistentFlags().BoolVarP(
		&flagDebug,
		"debug", "d",
		false,
		"enable debug logging --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagPort,
		"port", "p",
		"",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagDBDriver,
		"db-driver", "",
		"",
		`database driver --db-driver <sqlite|postgres> | example: --db-driver="postgres"`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagDBName,
		"db-name", "",
		"",
		`sqlite file or postgres database name --db-name <string> | example: --db-name="storages/poster.db"`,
	)
}

// initEnvConfig loads configuration from the environment and applies flags
func initEnvConfig() {
	cfg, err := coreconfig.LoadConfig(".")
	if err != nil {
		logrus.Fatalf("[CONFIG] failed to load configuration: %v", err)
	}

	if rootCmd.PersistentFlags().Changed("debug") {
		cfg.App.Debug = flagDebug
	}
	if flagPort != "" {
		cfg.App.Port = flagPort
	}
	if flagDBDriver != "" {
		cfg.Database.Driver = flagDBDriver
	}
	if flagDBName != "" {
		cfg.Database.Name = flagDBName
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
