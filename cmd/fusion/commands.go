package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Ayash-Bera/apifusion/internal/client"
	"github.com/Ayash-Bera/apifusion/internal/controller"
	"github.com/Ayash-Bera/apifusion/internal/discovery"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/Ayash-Bera/apifusion/internal/panels"
	"github.com/Ayash-Bera/apifusion/internal/render"
	"github.com/Ayash-Bera/apifusion/internal/tui"
	"github.com/Ayash-Bera/apifusion/pkg/utils"
	"github.com/spf13/cobra"
)

func newSearchCommand(root *rootOptions) *cobra.Command {
	var (
		sources []string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one search and print the merged results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, root)
			if err != nil {
				return err
			}
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("query cannot be empty")
			}
			if limit <= 0 {
				limit = a.cfg.Client.Limit
			}

			selected := models.ParseSources(sources)
			if len(selected) == 0 {
				selected = append(selected, models.DefaultSources...)
			}

			resp, err := a.client.Search(cmd.Context(), query, selected, limit)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(resp)
			}

			st := controller.State{
				Text:    query,
				Query:   query,
				Sources: selected,
				Limit:   limit,
				Status:  controller.Resolved,
				Items:   resp.Items,
				Errors:  resp.Errors,
				TookMs:  resp.TookMs,
			}
			_, err = fmt.Fprint(a.out, render.Search(st, render.DefaultStyles()))
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&sources, "sources", "s", nil, "sources to query (github, hackernews, rss)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (default from client.limit)")
	return cmd
}

func newSourcesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Show the health of each upstream source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, root)
			if err != nil {
				return err
			}
			rows, err := a.client.GetSources(cmd.Context())
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(rows)
			}
			view := panels.View[models.SourceStatus]{Phase: panels.Loaded, Rows: rows}
			_, err = fmt.Fprintln(a.out, render.StatusPanel(view, render.DefaultStyles()))
			return err
		},
	}
}

func newLogsCommand(root *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List recent search requests, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, root)
			if err != nil {
				return err
			}
			rows, err := a.client.GetLogs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(rows)
			}
			view := panels.View[models.LogRow]{Phase: panels.Loaded, Rows: rows}
			_, err = fmt.Fprintln(a.out, render.LogPanel(view, render.DefaultStyles()))
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", panels.DefaultLogLimit, "number of rows")
	return cmd
}

func newTUICommand(root *rootOptions) *cobra.Command {
	var sources []string
	cmd := &cobra.Command{
		Use:   "tui [query]",
		Short: "Open the interactive search view",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, root)
			if err != nil {
				return err
			}
			selected := models.ParseSources(sources)
			if len(selected) == 0 {
				selected = append(selected, models.DefaultSources...)
			}
			return tui.Run(cmd.Context(), a.client, tui.Options{
				Controller: controller.Options{
					Debounce: a.cfg.Client.Debounce,
					Limit:    a.cfg.Client.Limit,
					Sources:  selected,
				},
				InitialQuery: strings.Join(args, " "),
				LogLimit:     panels.DefaultLogLimit,
			}, a.logger)
		},
	}
	cmd.Flags().StringSliceVarP(&sources, "sources", "s", nil, "initially selected sources")
	return cmd
}

func newFeedsCommand(root *rootOptions) *cobra.Command {
	feeds := &cobra.Command{
		Use:   "feeds",
		Short: "Work with RSS feeds",
	}
	discover := &cobra.Command{
		Use:   "discover <site-url>",
		Short: "List the RSS/Atom feeds a website advertises",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := utils.NewLogger("info", cmd.ErrOrStderr())
			if root.debug {
				logger = utils.NewLogger("debug", cmd.ErrOrStderr())
			}
			d := discovery.NewDiscoverer(discovery.Options{Verbose: root.debug}, logger)
			found, err := d.Discover(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.json {
				a := &app{out: out}
				return a.printJSON(found)
			}
			if len(found) == 0 {
				_, err = fmt.Fprintln(out, "No feeds advertised")
				return err
			}
			rows := [][]string{{"TYPE", "URL", "TITLE"}}
			for _, f := range found {
				rows = append(rows, []string{f.Type, f.URL, f.Title})
			}
			_, err = fmt.Fprintln(out, render.Table(rows, render.DefaultStyles()))
			if err == nil {
				_, err = fmt.Fprintf(out, "\nAdd with: RSS_FEEDS=%s\n", found[0].URL)
			}
			return err
		},
	}
	feeds.AddCommand(discover)
	return feeds
}

var _ tui.Backend = (*client.Client)(nil)
