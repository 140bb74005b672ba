package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smbox/smbox/internal/config"
	"github.com/smbox/smbox/internal/flags"
	"github.com/smbox/smbox/internal/highlight"
	"github.com/smbox/smbox/internal/paths"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the config file",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config file and its highlight rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return checkConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), cfg)
	},
}

var configSetMboxCmd = &cobra.Command{
	Use:   "set-mbox PATH",
	Short: "Store the default mbox path in the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving mbox path: %w", err)
		}
		target := viper.ConfigFileUsed()
		if target == "" {
			target = paths.UserConfig()
		}
		if err := config.SaveMboxPath(target, path); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "mbox set to %s in %s\n", path, target)
		return err
	},
}

func init() {
	configCmd.AddCommand(configCheckCmd, configSetMboxCmd)
	rootCmd.AddCommand(configCmd)
}

// checkConfig validates c and reports the highlight contexts in the order
// they are checked.
func checkConfig(w io.Writer, file string, c config.Config) error {
	if file == "" {
		file = "(defaults)"
	}
	if err := config.Validate(c); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	rules, err := highlight.NewRuleSet(c.Highlights)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	if _, err := fmt.Fprintf(w, "%s: ok, %d highlight context(s)\n", file, rules.Len()); err != nil {
		return err
	}
	for i, name := range rules.Names() {
		ctx := rules.Context(i)
		if _, err := fmt.Fprintf(w, "  %d. %s (%d match rule(s))\n", i+1, name, len(ctx.Matches)); err != nil {
			return err
		}
	}
	for _, name := range flags.New(c.Flags).Unknown() {
		if _, err := fmt.Fprintf(w, "warning: unknown flag %q\n", name); err != nil {
			return err
		}
	}
	return nil
}
