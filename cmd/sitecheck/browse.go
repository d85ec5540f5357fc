package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gabriel/manga-site-adapters/internal/models"
	"github.com/spf13/cobra"
)

func newListingCmd(opts *rootOptions, kind string) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   kind + " <source>",
		Short: "Fetch one page of the " + kind + " listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			connector, err := opts.connector(args[0])
			if err != nil {
				return err
			}

			var listing models.ListingPage
			if kind == string(models.ListingLatest) {
				listing, err = connector.Latest(cmd.Context(), page)
			} else {
				listing, err = connector.Popular(cmd.Context(), page)
			}
			if err != nil {
				return fmt.Errorf("%s page %d: %w", kind, page, err)
			}
			return printListing(cmd, opts, listing)
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number, starting at 1")
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var page int
	var rawFilters []string

	cmd := &cobra.Command{
		Use:   "search <source> [query...]",
		Short: "Search a source by title and filters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			connector, err := opts.connector(args[0])
			if err != nil {
				return err
			}
			filters, err := parseFilterFlags(rawFilters)
			if err != nil {
				return err
			}

			listing, err := connector.Search(cmd.Context(), page, strings.Join(args[1:], " "), filters)
			if err != nil {
				return fmt.Errorf("search page %d: %w", page, err)
			}
			return printListing(cmd, opts, listing)
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number, starting at 1")
	cmd.Flags().StringArrayVar(&rawFilters, "filter", nil, "filter as param=value, repeatable")
	return cmd
}

func newDetailsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "details <source> <manga-url>",
		Short: "Fetch a manga's details page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			connector, err := opts.connector(args[0])
			if err != nil {
				return err
			}

			details, err := connector.Details(cmd.Context(), models.MangaSummary{URL: args[1]})
			if err != nil {
				return fmt.Errorf("details: %w", err)
			}
			return printJSON(cmd, details)
		},
	}
}

func newChaptersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <source> <manga-url>",
		Short: "List a manga's chapters",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			connector, err := opts.connector(args[0])
			if err != nil {
				return err
			}

			chapters, err := connector.Chapters(cmd.Context(), models.MangaSummary{URL: args[1]})
			if err != nil {
				return fmt.Errorf("chapters: %w", err)
			}
			if opts.json {
				return printJSON(cmd, chapters)
			}

			t := newTable("#", "Name", "Uploaded", "URL")
			for _, chapter := range chapters {
				uploaded := "-"
				if chapter.UploadedAt != nil {
					uploaded = chapter.UploadedAt.Format("2006-01-02")
				}
				t.Row(strconv.Itoa(chapter.Position), truncateString(chapter.Name, 40), uploaded, chapter.URL)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

func newPagesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pages <source> <chapter-url>",
		Short: "List a chapter's page images",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			connector, err := opts.connector(args[0])
			if err != nil {
				return err
			}

			pages, err := connector.Pages(cmd.Context(), models.Chapter{URL: args[1]})
			if err != nil {
				return fmt.Errorf("pages: %w", err)
			}
			if opts.json {
				return printJSON(cmd, pages)
			}

			t := newTable("#", "Image URL")
			for _, page := range pages {
				t.Row(strconv.Itoa(page.Index), page.ImageURL)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

func parseFilterFlags(raw []string) ([]models.FilterSelection, error) {
	selections := make([]models.FilterSelection, 0, len(raw))
	for _, item := range raw {
		param, value, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(param) == "" {
			return nil, fmt.Errorf("filter %q must look like param=value", item)
		}
		selections = append(selections, models.FilterSelection{Param: strings.TrimSpace(param), Value: value})
	}
	return selections, nil
}
