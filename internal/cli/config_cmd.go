package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mindcareai/mindcare/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the config file by dotted key",
		Long:  "Keys are dotted paths into the YAML document, for example voice.reconnectDelayMs or chat.defaultLanguage.",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print a configuration value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return onRawConfig(args[0], false, func(raw map[string]any, key []string) error {
					val, ok := config.GetValueAtPath(raw, key)
					if !ok {
						return fmt.Errorf("key %q not found", args[0])
					}
					return printValue(cmd.OutOrStdout(), val)
				})
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a configuration value",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				value := parseValue(args[1])
				err := onRawConfig(args[0], true, func(raw map[string]any, key []string) error {
					config.SetValueAtPath(raw, key, value)
					return validateRaw(raw)
				})
				if err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", args[0], value)
				}
				return err
			},
		},
		&cobra.Command{
			Use:   "unset <key>",
			Short: "Remove a configuration value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				err := onRawConfig(args[0], true, func(raw map[string]any, key []string) error {
					if !config.UnsetValueAtPath(raw, key) {
						return fmt.Errorf("key %q not found", args[0])
					}
					return nil
				})
				if err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])
				}
				return err
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), paths.Config)
			},
		},
	)
	return cmd
}

// onRawConfig parses key, loads the raw document and hands both to fn. When
// save is set and fn succeeds, the edited document is written back.
func onRawConfig(key string, save bool, fn func(raw map[string]any, key []string) error) error {
	segs, err := config.ParseConfigPath(key)
	if err != nil {
		return err
	}
	raw, err := config.LoadRaw(paths.Config)
	if err != nil {
		return err
	}
	if err := fn(raw, segs); err != nil || !save {
		return err
	}
	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	return config.SaveRaw(paths.Config, raw)
}

// validateRaw decodes an edited raw document over the defaults and rejects
// values the server would refuse to start with.
func validateRaw(raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	cfg := config.Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	issues := config.Validate(&cfg)
	if len(issues) == 0 {
		return nil
	}
	msgs := make([]string, len(issues))
	for i, issue := range issues {
		msgs[i] = issue.String()
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// printValue writes scalars on one line and nested values as YAML.
func printValue(w io.Writer, v any) error {
	switch val := v.(type) {
	case map[string]any, []any:
		data, err := yaml.Marshal(val)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(data))
	default:
		fmt.Fprintln(w, val)
	}
	return nil
}

// parseValue interprets a string as a bool, integer or float, falling back
// to the string itself.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
