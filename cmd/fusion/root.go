package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/client"
	"github.com/Ayash-Bera/apifusion/internal/config"
	"github.com/Ayash-Bera/apifusion/internal/mock"
	"github.com/Ayash-Bera/apifusion/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	mode    string
	baseURL string
	timeout time.Duration
	debug   bool
	json    bool
}

// app is what every subcommand runs against.
type app struct {
	cfg    *config.Config
	client *client.Client
	logger *logrus.Logger
	out    io.Writer
	json   bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "fusion",
		Short:         "Search GitHub, Hacker News and RSS in one place",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.mode, "mode", "", `backend mode: "mock" or "api" (default from client.mode)`)
	flags.StringVar(&opts.baseURL, "base-url", "", "backend base URL in api mode (default from client.base_url)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-call timeout, 0 for none (default from client.timeout)")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging on stderr")
	flags.BoolVar(&opts.json, "json", false, "print JSON instead of formatted text")

	root.AddCommand(
		newSearchCommand(opts),
		newSourcesCommand(opts),
		newLogsCommand(opts),
		newTUICommand(opts),
		newFeedsCommand(opts),
	)
	return root
}

// setup loads config, applies flag overrides and builds the client. Logs
// go to stderr so command output stays clean.
func setup(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Client.Mode = opts.mode
	}
	if flags.Changed("base-url") {
		cfg.Client.BaseURL = opts.baseURL
	}
	if flags.Changed("timeout") {
		cfg.Client.Timeout = opts.timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.App.LogLevel
	if opts.debug {
		level = "debug"
	}
	logger := utils.NewLogger(level, os.Stderr)

	c, err := client.New(client.Config{
		Mode:        cfg.Client.Mode,
		BaseURL:     cfg.Client.BaseURL,
		Timeout:     cfg.Client.Timeout,
		MockLatency: mock.DefaultLatency,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		client: c,
		logger: logger,
		out:    cmd.OutOrStdout(),
		json:   opts.json,
	}, nil
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
