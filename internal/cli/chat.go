package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mindcareai/mindcare/internal/domain"
	"github.com/spf13/cobra"
)

var errQuit = errors.New("quit")

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk with MindCare in the terminal",
		Long:  "Opens an interactive conversation in the current session. Type /help for commands.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := openServices(cfg, terminalNotifier(cmd.ErrOrStderr()), log)
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, stop := signalContext()
			defer stop()

			r := &repl{svc: svc, out: cmd.OutOrStdout()}
			return r.run(ctx, cmd.InOrStdin())
		},
	}

	cmd.AddCommand(newChatSendCmd())
	return cmd
}

func newChatSendCmd() *cobra.Command {
	var (
		sessionID string
		fresh     bool
	)

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := openServices(cfg, terminalNotifier(cmd.ErrOrStderr()), log)
			if err != nil {
				return err
			}
			defer svc.Close()

			switch {
			case fresh:
				svc.chat.CreateSession()
			case sessionID != "":
				if err := svc.chat.SelectSession(sessionID); err != nil {
					return err
				}
			default:
				svc.chat.EnsureSession()
			}

			ctx, stop := signalContext()
			defer stop()

			reply, ok, err := send(ctx, svc, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("no reply received")
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id to continue")
	cmd.Flags().BoolVar(&fresh, "new", false, "start a new session")

	return cmd
}

// send adds a user message to the current session and returns the reply
// appended by the cycle, if any.
func send(ctx context.Context, svc *services, text string) (string, bool, error) {
	before, ok := svc.chat.CurrentSession()
	if !ok {
		return "", false, errors.New("no current session")
	}
	if err := svc.chat.AddMessage(ctx, text, domain.RoleUser); err != nil {
		return "", false, err
	}
	after, ok := svc.chat.Session(before.ID)
	if !ok || len(after.Messages) < len(before.Messages)+2 {
		return "", false, nil
	}
	last, _ := after.LastMessage()
	if last.Role != domain.RoleAssistant {
		return "", false, nil
	}
	return last.Content, true, nil
}

// repl is the interactive chat loop. Lines starting with "/" are commands;
// anything else is sent as a user message.
type repl struct {
	svc *services
	out io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	id := r.svc.chat.EnsureSession()
	r.printSessionHeader(id)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		err := r.handle(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *repl) handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		r.svc.chat.EnsureSession()
		reply, ok, err := send(ctx, r.svc, line)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(r.out, "mindcare> %s\n", reply)
		}
		return nil
	}

	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "help":
		r.printHelp()
	case "quit", "exit":
		return errQuit
	case "new":
		r.printSessionHeader(r.svc.chat.CreateSession())
	case "list":
		r.printSessions()
	case "open":
		n, err := strconv.Atoi(arg)
		sessions := r.svc.chat.Sessions()
		if err != nil || n < 1 || n > len(sessions) {
			return fmt.Errorf("usage: /open <1-%d>", len(sessions))
		}
		if err := r.svc.chat.SelectSession(sessions[n-1].ID); err != nil {
			return err
		}
		r.printHistory()
	case "history":
		r.printHistory()
	case "rename":
		if arg == "" {
			return errors.New("usage: /rename <title>")
		}
		r.svc.chat.UpdateSessionTitle(r.svc.chat.CurrentSessionID(), arg)
		fmt.Fprintf(r.out, "renamed to %q\n", arg)
	case "delete":
		id := r.svc.chat.CurrentSessionID()
		if id == "" {
			return errors.New("no current session")
		}
		r.svc.chat.DeleteSession(id)
		fmt.Fprintln(r.out, "session deleted")
	case "lang":
		if arg == "" {
			fmt.Fprintln(r.out, r.svc.chat.Language())
			return nil
		}
		lang, ok := domain.ParseLanguage(arg)
		if !ok {
			return fmt.Errorf("unsupported language %q", arg)
		}
		r.svc.chat.SetLanguage(lang)
		fmt.Fprintf(r.out, "language set to %s\n", lang)
	case "reset":
		r.svc.chat.Reset()
		fmt.Fprintln(r.out, "all sessions removed")
	default:
		return fmt.Errorf("unknown command /%s (try /help)", name)
	}
	return nil
}

func (r *repl) printHelp() {
	fmt.Fprint(r.out, `commands:
  /new              start a new session
  /list             list sessions
  /open <n>         switch to session n from /list
  /history          show the current session
  /rename <title>   rename the current session
  /delete           delete the current session
  /lang [tag]       show or set the language (e.g. en-US)
  /reset            delete every session
  /quit             leave
`)
}

func (r *repl) printSessionHeader(id string) {
	sess, ok := r.svc.chat.Session(id)
	if !ok {
		return
	}
	fmt.Fprintf(r.out, "== %s (%s) ==\n", sess.Title, sess.Language)
	if last, ok := sess.LastMessage(); ok && last.Role == domain.RoleAssistant {
		fmt.Fprintf(r.out, "mindcare> %s\n", last.Content)
	}
}

func (r *repl) printSessions() {
	current := r.svc.chat.CurrentSessionID()
	sessions := r.svc.chat.Sessions()
	if len(sessions) == 0 {
		fmt.Fprintln(r.out, "no sessions")
		return
	}
	for i, s := range sessions {
		mark := " "
		if s.ID == current {
			mark = "*"
		}
		fmt.Fprintf(r.out, "%s %2d  %-32s %s  %d messages\n", mark, i+1, s.Title, s.Language, len(s.Messages))
	}
}

func (r *repl) printHistory() {
	sess, ok := r.svc.chat.CurrentSession()
	if !ok {
		fmt.Fprintln(r.out, "no current session")
		return
	}
	fmt.Fprintf(r.out, "== %s (%s) ==\n", sess.Title, sess.Language)
	for _, m := range sess.Messages {
		switch m.Role {
		case domain.RoleUser:
			fmt.Fprintf(r.out, "you> %s\n", m.Content)
		case domain.RoleAssistant:
			fmt.Fprintf(r.out, "mindcare> %s\n", m.Content)
		}
	}
}
