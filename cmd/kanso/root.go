package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/comitanigiacomo/kanso-grid/internal/cli/settings"
	"github.com/comitanigiacomo/kanso-grid/internal/client"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// session is shared by every command of one invocation.
type session struct {
	now      func() time.Time
	apiURL   string
	settings *settings.Settings
}

func (s *session) client() *client.Client {
	url := s.settings.APIURL
	if s.apiURL != "" {
		url = s.apiURL
	}
	return client.New(url, s.settings.Token)
}

func (s *session) authed() (*client.Client, error) {
	if !s.settings.LoggedIn() {
		return nil, client.ErrNotLoggedIn
	}
	return s.client(), nil
}

// clock is the current time in the zone of the local preferences.
func (s *session) clock() time.Time {
	return s.now().In(s.settings.Preferences.Location())
}

func newRootCmd(now func() time.Time) *cobra.Command {
	s := &session{now: now}

	root := &cobra.Command{
		Use:   "kanso",
		Short: "Habit grids and streaks in your terminal",
		Long:  `kanso shows your habits as calendar-aligned grids. Logs live on a kanso-grid server; every view is computed locally.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := settings.Load()
			if err != nil {
				return err
			}
			s.settings = loaded
			return nil
		},
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&s.apiURL, "api", "", "API base URL, overrides api_url for this call")

	root.AddCommand(
		newLoginCmd(s),
		newLogoutCmd(s),
		newHabitsCmd(s),
		newGridCmd(s),
		newCalendarCmd(s),
		newStreakCmd(s),
		newToggleCmd(s),
		newPrefsCmd(s),
	)
	return root
}

func checkOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output %q (want text, json or yaml)", format)
}

// writeStructured encodes v as json or yaml. Text output is rendered by the
// caller.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return checkOutput(format)
}
