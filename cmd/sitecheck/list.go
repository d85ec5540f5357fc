package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gabriel/manga-site-adapters/internal/connectors"
	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := opts.registry()
			if err != nil {
				return err
			}

			descriptors := registry.List()
			if len(descriptors) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sources registered.")
				return nil
			}

			t := newTable("Key", "Name", "Lang", "Kind", "Latest", "NSFW", "Base URL")
			for _, d := range descriptors {
				t.Row(d.Key, truncateString(d.Name, 30), d.Lang, d.Kind, yesNo(d.SupportsLatest), yesNo(d.NSFW), d.BaseURL)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "health [key...]",
		Short: "Check that sources answer their home page",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := opts.registry()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			var statuses []connectors.HealthStatus
			if len(args) == 0 {
				statuses = registry.Health(ctx)
			}
			for _, arg := range args {
				connector, ok := registry.Get(arg)
				if !ok {
					return fmt.Errorf("unknown source %q", arg)
				}
				statuses = append(statuses, connectors.CheckHealth(ctx, connector))
			}

			t := newTable("Key", "Name", "Healthy", "Error")
			for _, status := range statuses {
				t.Row(status.Key, truncateString(status.Name, 30), strconv.FormatBool(status.Healthy), truncateString(status.Error, 60))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout for all checks")
	return cmd
}
