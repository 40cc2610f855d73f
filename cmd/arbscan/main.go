package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	appName = "arbscan"
	version = "v1.2.0"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Cross-exchange crypto arbitrage scanner",
		Version: version,
		Long: `arbscan polls public ticker endpoints across spot exchanges, caches a
consistent market snapshot, and serves ranked cross-exchange arbitrage
opportunities over a read-only JSON API.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to yaml config (defaults built in)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace|debug|info|warn|error)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with background snapshot refresh",
		RunE:  runServe,
	}
	serveCmd.Flags().String("listen", "", "Override host:port from config")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one fetch cycle and print opportunities to stdout",
		RunE:  runScan,
	}
	scanCmd.Flags().Bool("json", false, "Emit the full report as JSON")
	scanCmd.Flags().String("tier", "premium", "Access tier for result limits (free|premium)")
	scanCmd.Flags().Float64("min-profit", 0, "Minimum profit percent filter")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the arbscan version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", appName, version)
		},
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)

	cobra.OnInitialize(func() {
		applyLogLevel(rootCmd.PersistentFlags())
	})

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func applyLogLevel(flags *pflag.FlagSet) {
	levelStr, _ := flags.GetString("log-level")
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		log.Warn().Str("level", levelStr).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
