package cli

import (
	"fmt"
	"os"

	"github.com/mindcareai/mindcare/internal/config"
	"github.com/mindcareai/mindcare/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show MindCare status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "MindCare %s (commit %s)\n\n", version.Version, version.Commit)

			// Show paths
			fmt.Fprintf(out, "Config:  %s\n", paths.Config)
			fmt.Fprintf(out, "Data:    %s\n", paths.Data)
			fmt.Fprintf(out, "Logs:    %s\n", paths.Logs)
			fmt.Fprintln(out)

			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				fmt.Fprintln(out, "Config:  not found (using defaults)")
			}
			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config:  error loading: %v\n", err)
				return nil
			}

			fmt.Fprintf(out, "Gateway: port=%d bind=%s auth=%s tls=%v\n",
				cfg.Gateway.Port, cfg.Gateway.Bind, cfg.Gateway.Auth.Mode, cfg.Gateway.TLS.Enabled)
			storePath := "-"
			if cfg.Store.Driver == "sqlite" {
				storePath = paths.StorePath(cfg.Store)
			}
			fmt.Fprintf(out, "Store:   driver=%s path=%s\n", cfg.Store.Driver, storePath)
			fmt.Fprintf(out, "Chat:    language=%s replyLatency=%s\n", cfg.Chat.DefaultLanguage, cfg.Chat.ReplyLatency())
			fmt.Fprintf(out, "Voice:   attempts=%d reconnectDelay=%s languageRestart=%s\n",
				cfg.Voice.MaxReconnectAttempts, cfg.Voice.ReconnectDelay(), cfg.Voice.LanguageRestartDelay())

			// Validation
			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
				}
				return nil
			}

			// Stored state
			svc, err := openServices(cfg, nil, log)
			if err != nil {
				fmt.Fprintf(out, "State:   error opening store: %v\n", err)
				return nil
			}
			defer svc.Close()

			fmt.Fprintf(out, "State:   sessions=%d language=%s", len(svc.chat.Sessions()), svc.chat.Language())
			if st := svc.users.State(); st.IsAuthenticated && st.User != nil {
				fmt.Fprintf(out, " user=%s", st.User.Username)
			}
			fmt.Fprintln(out)
			if svc.db != nil {
				if v, err := svc.db.SchemaVersion(); err == nil {
					fmt.Fprintf(out, "Schema:  v%d\n", v)
				}
			}
			return nil
		},
	}

	return cmd
}
