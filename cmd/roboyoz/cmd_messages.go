package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roboyoz/hotline/internal/messages"
)

func newMessagesCommand() *cobra.Command {
	var (
		all  bool
		sets []string
	)

	cmd := &cobra.Command{
		Use:   "messages [slug]",
		Short: "Show catalog messages",
		Long: `Show catalog messages.

With no slug, lists every slug in the catalog. With a slug, prints one
variant chosen the way a call would, or every variant with --all.
Placeholders such as ${name} are filled from --set name=value.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			catalog, err := messages.Load(cfg.Resolve(cfg.Catalog.Path))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for _, slug := range catalog.Slugs() {
					fmt.Fprintln(out, slug)
				}
				return nil
			}

			values := messages.Values{}
			for _, kv := range sets {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || k == "" {
					return fmt.Errorf("--set wants key=value, got %q", kv)
				}
				values[k] = v
			}

			slug := args[0]
			if !all {
				text, err := catalog.Get(slug, values)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, text)
				return nil
			}
			variants, err := catalog.Variants(slug)
			if err != nil {
				return err
			}
			for i, v := range variants {
				fmt.Fprintf(out, "%d. %s\n", i+1, messages.Substitute(v, values))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Print every variant")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Placeholder value as key=value (repeatable)")
	return cmd
}
