package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackielii/spaview"
	"github.com/jackielii/spaview/internal/artists"
	"github.com/jackielii/spaview/internal/config"
	"github.com/spf13/cobra"
)

func navigateCmd(root *rootOptions) *cobra.Command {
	var (
		latency time.Duration
		noWait  bool
		cache   bool
	)
	cmd := &cobra.Command{
		Use:   "navigate <path>...",
		Short: "Navigate through the route table and print what gets rendered",
		Long: `Navigate to each path in turn and print the final rendered view.

With --no-wait all navigations are started back to back, so only the last one
renders its deferred view and the earlier ones report being superseded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := root.logLevel
			if level == "" {
				level = "warn"
			}
			logger, err := newLogger(config.ModeDevelopment, level)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			table, err := artists.Table(artists.Options{Latency: latency})
			if err != nil {
				return err
			}
			mount := spaview.NewMount()
			opts := []spaview.NavigatorOption{spaview.WithLogger(logger)}
			if cache {
				opts = append(opts, spaview.WithLoaderCache())
			}
			nv := spaview.NewNavigator(table, mount, opts...)
			defer nv.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			report := func(nav *spaview.Navigation, html bool) error {
				phase, err := nav.Wait(ctx)
				path := nav.State().Path
				switch {
				case errors.Is(err, spaview.ErrSuperseded):
					fmt.Fprintf(out, "%s: superseded\n", path)
				case err != nil && phase != spaview.PhaseFailed:
					return err
				case html:
					fmt.Fprintf(out, "%s: %s\n%s\n", path, phase, mount.HTML())
				default:
					fmt.Fprintf(out, "%s: %s\n", path, phase)
				}
				return nil
			}

			if !noWait {
				for _, p := range args {
					if err := report(nv.Navigate(ctx, p), true); err != nil {
						return err
					}
				}
				return nil
			}
			navs := make([]*spaview.Navigation, 0, len(args))
			for _, p := range args {
				navs = append(navs, nv.Navigate(ctx, p))
			}
			for _, nav := range navs {
				if err := report(nav, false); err != nil {
					return err
				}
			}
			fmt.Fprintln(out, mount.HTML())
			return nil
		},
	}
	cmd.Flags().DurationVar(&latency, "latency", 50*time.Millisecond, "simulated load time of deferred views")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "start all navigations without waiting for each")
	cmd.Flags().BoolVar(&cache, "cache", false, "keep loaded views between navigations")
	return cmd
}
