package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-grid/internal/cli/settings"
	"github.com/comitanigiacomo/kanso-grid/internal/cli/ui"
)

func newPrefsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change local preferences",
		Long:  `Preferences are kept in ` + "`$XDG_CONFIG_HOME/kanso/config.toml`" + ` and shape every view kanso draws.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, key := range settings.Keys() {
				v, err := s.settings.Get(key)
				if err != nil {
					return err
				}
				ui.Kv(out, key, v)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := s.settings.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.settings.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := settings.Save(s.settings); err != nil {
				return err
			}
			v, _ := s.settings.Get(args[0])
			ui.Ok(cmd.OutOrStdout(), fmt.Sprintf("%s = %s", args[0], v))
			return nil
		},
	})

	return cmd
}
