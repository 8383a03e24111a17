package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-grid/internal/cli/ui"
	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

func newHabitsCmd(s *session) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "habits",
		Short: "List habits with their streak and today's state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := s.authed()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			habits, err := c.Habits(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			today := calendar.ToLocalDateKey(s.clock())

			shown := 0
			for _, h := range habits {
				if h.IsArchived() && !all {
					continue
				}
				entries, err := c.Logs(ctx, h.ID, "", today)
				if err != nil {
					return err
				}
				log := domain.Events(entries)
				fmt.Fprintln(out, ui.HabitLine(h, calendar.CurrentStreak(log), calendar.CompletedOn(log, today)))
				shown++
			}

			if shown == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No habits yet."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include archived habits")
	return cmd
}
