package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jackielii/spaview"
	"github.com/jackielii/spaview/internal/artists"
	"github.com/spf13/cobra"
)

func routesCmd(_ *rootOptions) *cobra.Command {
	var match string
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := artists.Table(artists.Options{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if match == "" {
				fmt.Fprint(out, spaview.PrintRoutes(table))
				return nil
			}
			m, ok := table.Match(match)
			if !ok {
				return fmt.Errorf("no route matches %s", match)
			}
			fmt.Fprintf(out, "%s -> %s [%s]", match, m.Node.FullPath(), m.Node.Name)
			if m.Index {
				fmt.Fprint(out, " (index)")
			}
			for _, name := range slices.Sorted(maps.Keys(m.Params)) {
				fmt.Fprintf(out, " %s=%s", name, m.Params[name])
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&match, "match", "", "show the route matching this path instead of the whole table")
	return cmd
}
