package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/roboyoz/hotline/internal/recordings"
	"github.com/roboyoz/hotline/internal/spinner"
)

func newDownloadCommand() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "download <dir>",
		Short: "Download every recording into a directory",
		Long: `Download every recorded answer into a directory.

Files are laid out as <dir>/<caller>/<question>-<id>.wav. Recordings already
on disk are skipped, so an interrupted download can simply be rerun.
Recordings copied to blob storage are read from there; the rest are fetched
from the telephony provider with the account credentials.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("opening %s store: %w", cfg.Storage.Driver, err)
			}
			defer closeStore() //nolint:errcheck

			_, source, err := openAssets(cfg)
			if err != nil {
				return fmt.Errorf("opening assets: %w", err)
			}

			d := &recordings.Downloader{
				Store:       store,
				Assets:      source,
				AccountSid:  cfg.Twilio.AccountSid,
				AuthToken:   cfg.Twilio.AuthToken,
				Concurrency: concurrency,
				Logger:      slog.Default(),
			}
			stop := func() {}
			if f, ok := cmd.ErrOrStderr().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				s := spinner.Start(f, "Downloading recordings")
				d.Progress = func(done, total int) {
					s.SetMessage(fmt.Sprintf("Downloading recordings (%d/%d)", done, total))
				}
				stop = s.Stop
			}
			report, err := d.Download(ctx, args[0])
			stop()
			if report != nil {
				out := cmd.OutOrStdout()
				sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Path < report.Files[j].Path })
				for _, f := range report.Files {
					if f.Skipped {
						continue
					}
					fmt.Fprintf(out, "%s (%s)\n", f.Path, humanize.Bytes(uint64(f.Size)))
				}
				fmt.Fprintf(out, "Downloaded %d recordings (%s), skipped %d already on disk\n",
					report.Downloaded, humanize.Bytes(uint64(report.Bytes)), report.Skipped)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", recordings.DefaultConcurrency, "Parallel downloads")
	return cmd
}
