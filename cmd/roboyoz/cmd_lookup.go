package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roboyoz/hotline/internal/twilio"
)

func newLookupCommand() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "lookup <phone-number>",
		Short: "Look up the caller name for a phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Twilio.AccountSid == "" || cfg.Twilio.AuthToken == "" {
				return errors.New("twilio.account_sid and twilio.auth_token are required")
			}
			client := &twilio.LookupClient{
				AccountSid: cfg.Twilio.AccountSid,
				AuthToken:  cfg.Twilio.AuthToken,
				BaseURL:    baseURL,
			}
			name, err := client.CallerName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = "(no caller name)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", twilio.DefaultLookupBaseURL, "Lookup API root")
	_ = cmd.Flags().MarkHidden("base-url")
	return cmd
}
