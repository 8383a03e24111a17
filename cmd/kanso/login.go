package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-grid/internal/cli/settings"
	"github.com/comitanigiacomo/kanso-grid/internal/cli/ui"
)

func newLoginCmd(s *session) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Long:  `Exchanges your credentials for a token and stores it in the local config. Without --password the password is read from stdin.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			token, err := s.client().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			s.settings.Email = email
			s.settings.Token = token
			if s.apiURL != "" {
				s.settings.APIURL = s.apiURL
			}
			if err := settings.Save(s.settings); err != nil {
				return err
			}

			ui.Ok(cmd.OutOrStdout(), "Logged in as "+email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLogoutCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s.settings.Token = ""
			s.settings.Email = ""
			if err := settings.Save(s.settings); err != nil {
				return err
			}
			ui.Ok(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
