package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roboyoz/hotline/internal/config"
	"github.com/roboyoz/hotline/internal/simulator"
)

func newDialCommand() *cobra.Command {
	var (
		url        string
		identity   string
		scriptPath string
	)

	cmd := &cobra.Command{
		Use:   "dial",
		Short: "Call a running hotline from the terminal",
		Long: `Call a running hotline from the terminal.

Plays the browser client against /web: prompts are printed, and you answer
by typing digits or words. Recorded answers are typed too; the simulator
reports them back to the hotline the way the provider would.

With --script, answers are read from a YAML list instead:

  - text: "1"            # choose topic 1
  - text: I'm Ada.       # an answer
    key: "#"             # ...ended by pressing #`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if url == "" {
				url = defaultDialURL(cfg)
			}

			var prompter simulator.Prompter = &simulator.HuhPrompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			if scriptPath != "" {
				script, err := loadScript(scriptPath)
				if err != nil {
					return err
				}
				prompter = script
			}

			sim := &simulator.Simulator{
				BaseURL:  url,
				Identity: identity,
				Prompter: prompter,
				Out:      cmd.OutOrStdout(),
			}
			res, err := sim.Run(cmd.Context())
			if err != nil {
				return err
			}
			how := "call ended"
			if res.HungUp {
				how = "hung up"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s after %d requests, %d answers recorded (call %s)\n",
				how, res.Requests, res.Recordings, res.CallSid)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Hotline base URL (default: server.public_url or the local listen address)")
	cmd.Flags().StringVar(&identity, "identity", "terminal", "Caller identity")
	cmd.Flags().StringVar(&scriptPath, "script", "", "YAML file of scripted answers")
	return cmd
}

// defaultDialURL is the public URL when set, else the local listen address.
func defaultDialURL(cfg *config.Config) string {
	if cfg.Server.PublicURL != "" {
		return cfg.Server.PublicURL
	}
	addr := cfg.Server.Addr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func loadScript(path string) (*simulator.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	var steps []simulator.Step
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("parsing script %s: %w", path, err)
	}
	return &simulator.Script{Steps: steps}, nil
}
