package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roboyoz/hotline/internal/twilio"
)

func newTokenCommand() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <identity>",
		Short: "Mint a browser-client access token",
		Long: `Mint a voice access token for a browser client.

The token lets the client place calls through the configured TwiML app
(twilio.app_sid), signed with twilio.api_key and twilio.api_secret.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tc := cfg.TokenConfig()
			tc.TTL = ttl
			token, err := twilio.NewAccessToken(tc, args[0], time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", twilio.DefaultTokenTTL, "Token lifetime")
	return cmd
}
