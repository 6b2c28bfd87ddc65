package commands

import (
	"github.com/spf13/cobra"

	"github.com/vcollos/dashboard-rn518/internal/buildinfo"
	"github.com/vcollos/dashboard-rn518/internal/config"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
	dataDir    string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "rn518",
		Short:   "RN 518 economic-financial indicators for health-plan operators",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.FileName, "path to the configuration file")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with database settings")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&opts.dataDir, "data", "", "read ledger files from this directory instead of the configured source")

	rootCmd.AddCommand(
		newInitCommand(),
		newClassifyCommand(),
		newOperatorsCommand(opts),
		newIndicatorsCommand(opts),
		newPeriodCommand(opts),
		newAverageCommand(opts),
		newHistoryCommand(opts),
		newRankCommand(opts),
		newExportCommand(opts),
		newServeCommand(opts),
	)

	return rootCmd
}
