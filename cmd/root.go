package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "bayen",
	Short: "Bayen - CLI for the Bayen legal chat API",
	Long: `Command-line client for the Bayen Arabic legal-assistant API.
Ask a legal question and get an answer with citations.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("log-level", "warn", "log level (trace/debug/info/warn/error)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// a local .env is convenient for keeping BAYEN_API_KEY out of the shell
	// history; missing files are fine
	_ = godotenv.Load()

	viper.SetEnvPrefix("BAYEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

func setDefaults() {
	viper.SetDefault("timeout", "30s")
	viper.SetDefault("max_retries", 3)
	viper.SetDefault("backoff_base", "100ms")
}
