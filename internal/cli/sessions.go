package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and manage stored chat sessions",
	}

	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsDeleteCmd())
	cmd.AddCommand(newSessionsClearCmd())
	return cmd
}

// withServices opens the configured services for a one-shot command.
func withServices(cmd *cobra.Command, fn func(*services) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := openServices(cfg, terminalNotifier(cmd.ErrOrStderr()), log)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(svc)
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(svc *services) error {
				out := cmd.OutOrStdout()
				sessions := svc.chat.Sessions()
				if len(sessions) == 0 {
					fmt.Fprintln(out, "no sessions")
					return nil
				}
				current := svc.chat.CurrentSessionID()
				for _, s := range sessions {
					mark := " "
					if s.ID == current {
						mark = "*"
					}
					fmt.Fprintf(out, "%s %-36s  %-32s %s  %3d  %s\n",
						mark, s.ID, s.Title, s.Language, len(s.Messages), s.UpdatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(svc *services) error {
				if _, ok := svc.chat.Session(args[0]); !ok {
					return fmt.Errorf("session %q not found", args[0])
				}
				svc.chat.DeleteSession(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newSessionsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(svc *services) error {
				n := len(svc.chat.Sessions())
				svc.chat.Reset()
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d session(s)\n", n)
				return nil
			})
		},
	}
}
