package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/storesignal-io/storesignal/internal/logger"
	"github.com/storesignal-io/storesignal/internal/version"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	appLogger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:               "storesignal",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	Short:             "App Store signed payload tooling",
	Long: `storesignal verifies App Store signed payloads against pinned root
certificates and produces the signed artifacts an app backend needs
(App Store Connect API tokens and promotional offer signatures)`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		appLogger = logger.InitLogger(logger.ParseLogLevel(logLevel), "dev")
		return nil
	},
}

func Execute() {
	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error, none)")
}
