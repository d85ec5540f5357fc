package main

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gabriel/manga-site-adapters/internal/models"
	"github.com/spf13/cobra"
)

var (
	purple = lipgloss.Color("99")

	headerStyle = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Faint(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func printListing(cmd *cobra.Command, opts *rootOptions, listing models.ListingPage) error {
	if opts.json {
		return printJSON(cmd, listing)
	}
	if len(listing.Manga) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results found.")
		return nil
	}

	t := newTable("#", "Title", "URL")
	for i, manga := range listing.Manga {
		t.Row(fmt.Sprintf("%d", i+1), truncateString(manga.Title, 50), manga.URL)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t)
	fmt.Fprintln(cmd.OutOrStdout(), footerStyle.Render(fmt.Sprintf("has next page: %s", yesNo(listing.HasNextPage))))
	return nil
}

func printJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
