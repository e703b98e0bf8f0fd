package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/mindcareai/mindcare/internal/config"
	"github.com/mindcareai/mindcare/internal/gateway"
	"github.com/mindcareai/mindcare/internal/logging"
	"github.com/spf13/cobra"
)

func newGatewayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Manage the MindCare gateway server",
	}

	cmd.AddCommand(newGatewayRunCmd())
	return cmd
}

func newGatewayRunCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Gateway.Port = port
			}
			if bind != "" {
				cfg.Gateway.Bind = bind
			}

			level := logLevel
			if level == "" {
				level = cfg.Logging.Level
			}
			srvLog, logFile, err := logging.Open(logging.Options{
				Level: level,
				Style: cfg.Logging.ConsoleStyle,
				File:  cfg.Logging.File,
			})
			if err != nil {
				return err
			}
			defer logFile.Close()

			// Load raw config for RPC access
			raw, err := config.LoadRaw(paths.Config)
			if err != nil {
				raw = make(map[string]any)
			}

			// The registry delivers service notifications to every browser.
			clients := gateway.NewClientRegistry(srvLog)

			svc, err := openServices(cfg, clients, srvLog)
			if err != nil {
				return err
			}
			defer svc.Close()

			srv := gateway.New(cfg, srvLog,
				gateway.WithConfigRaw(raw),
				gateway.WithChat(svc.chat),
				gateway.WithAuth(svc.users),
				gateway.WithHooks(svc.hooks),
				gateway.WithClients(clients),
			)

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srvLog.Info().
				Int("sessions", len(svc.chat.Sessions())).
				Str("language", string(svc.chat.Language())).
				Bool("authenticated", svc.users.State().IsAuthenticated).
				Msg("state restored")
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (auto, lan, loopback, custom)")

	return cmd
}
