package cli

import (
	"os"

	"github.com/mindcareai/mindcare/internal/config"
	"github.com/mindcareai/mindcare/internal/logging"
	"github.com/mindcareai/mindcare/internal/version"
	"github.com/spf13/cobra"
)

// defaultCLILevel keeps the chat REPL free of info chatter.
const defaultCLILevel = "warn"

var (
	cfgFile  string
	logLevel string

	// set by the root PersistentPreRunE
	paths config.Paths
	log   *logging.Logger
)

// cliLevel picks --log-level, then MINDCARE_LOG_LEVEL, then warn.
func cliLevel() string {
	if logLevel != "" {
		return logLevel
	}
	if env := os.Getenv("MINDCARE_LOG_LEVEL"); env != "" {
		return env
	}
	return defaultCLILevel
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mindcare",
		Short:   "MindCare: multilingual supportive chat companion",
		Long:    "MindCare keeps supportive chat sessions in six languages, serves them to browsers over a WebSocket gateway, and bridges browser speech recognition.",
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			if paths, err = config.ResolvePaths(); err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			log = logging.New(nil, cliLevel())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ~/.mindcare/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(
		newVersionCmd(),
		newGatewayCmd(),
		newConfigCmd(),
		newStatusCmd(),
		newChatCmd(),
		newSessionsCmd(),
		newAuthCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
