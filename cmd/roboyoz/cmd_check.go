package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roboyoz/hotline/internal/config"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config file and message catalog",
		Long: `Validate the config file and message catalog.

Checks that:
  1. The config file matches its schema
  2. The message catalog matches its schema
  3. Every topic compiles and names a question list in the catalog
  4. Every message the call flow speaks is in the catalog
  5. Settings that depend on each other are both present

Exits with code 1 when problems are found.`,
		Args:          cobra.NoArgs,
		RunE:          runCheck,
		SilenceErrors: true,
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	p := message.NewPrinter(language.English)

	cfg, err := loadConfig(cmd)
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(out, "Config %s:\n", verr.Path)
			return report(out, p, verr.Problems)
		}
		return err
	}

	source := cfg.Path
	if source == "" {
		source = "(built-in defaults)"
	}
	fmt.Fprintf(out, "Config %s:\n", source)

	var problems []string
	catalogSource := "built-in catalog"
	if cfg.Catalog.Path != "" {
		catalogSource = cfg.Resolve(cfg.Catalog.Path)
	}

	machine, catalog, err := buildMachine(cfg)
	if err != nil {
		problems = append(problems, err.Error())
	} else {
		for _, slug := range machine.MissingMessages() {
			problems = append(problems, fmt.Sprintf("%s has no %q message", catalogSource, slug))
		}
		if !catalog.Has("error") {
			fmt.Fprintf(out, "  ! %s has no \"error\" message; a generic apology is used\n", catalogSource)
		}
	}

	if cfg.SignaturesEnabled() && cfg.Twilio.AuthToken == "" {
		problems = append(problems, "server.validate_signatures is on but twilio.auth_token is empty")
	}
	if cfg.Storage.Driver == config.DriverMongo && cfg.Storage.DSN == "" {
		problems = append(problems, "storage.dsn is required for the mongo driver")
	}
	if cfg.Assets.Driver == config.AssetsAzBlob && cfg.Assets.Container == "" {
		problems = append(problems, "assets.container is required for the azblob driver")
	}
	if cfg.Twilio.Lookup != nil && *cfg.Twilio.Lookup && (cfg.Twilio.AccountSid == "" || cfg.Twilio.AuthToken == "") {
		problems = append(problems, "twilio.lookup is on but the account sid or auth token is empty")
	}

	return report(out, p, problems)
}

func report(out io.Writer, p *message.Printer, problems []string) error {
	if len(problems) == 0 {
		fmt.Fprintln(out, "  ✓ no problems found")
		return nil
	}
	for _, problem := range problems {
		fmt.Fprintf(out, "  ✗ %s\n", problem)
	}
	p.Fprintf(out, "%d problem(s) found\n", len(problems))
	return &ProblemsError{Count: len(problems)}
}
