package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pders01/justtype/internal/search"
	"github.com/pders01/justtype/internal/storage"
)

var pollFeeds bool

var queryCmd = &cobra.Command{
	Use:   "query [text...]",
	Short: "Rank results for a query and print them",
	Long: `Rank results for a query and print the sections the search screen would
show. With no text, prints the results for an empty query.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(runtimeOptions{contacts: true, notifications: true, feeds: pollFeeds})
		if err != nil {
			return err
		}
		defer rt.Close()

		if pollFeeds {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*rt.cfg.Feeds.HTTPTimeout+time.Second)
			defer cancel()
			if err := rt.feeds.PollAll(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "some feeds failed: %v\n", err)
			}
		}

		in, err := rt.searchInput(strings.Join(args, " "))
		if err != nil {
			return err
		}
		state := rt.engine.Search(in)
		renderState(cmd.OutOrStdout(), state, in.Entries)
		return nil
	},
}

func init() {
	queryCmd.Flags().BoolVar(&pollFeeds, "poll", false, "poll configured feeds before ranking")
	rootCmd.AddCommand(queryCmd)
}

// renderState prints sections the way the search screen lays them out.
func renderState(w io.Writer, state search.State, entries []storage.Entry) {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
	muted := r.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	live := r.NewStyle().Foreground(lipgloss.Color("#FFE66D"))

	if state.Empty() {
		fmt.Fprintln(w, muted.Render("No results"))
		return
	}

	titles := make(map[string]string, len(entries))
	for _, e := range entries {
		titles[e.ID] = e.Title
	}

	for _, sec := range state.Sections {
		if sec.Title != "" {
			fmt.Fprintln(w, header.Render(sec.Title))
		}
		for _, item := range sec.Items {
			title, subtitle := describeItem(item, titles)
			line := "  " + title
			if n, ok := item.(search.NotificationResult); ok && n.IsLive {
				line = "  " + live.Render("●") + " " + title
			}
			if subtitle != "" {
				line += "  " + muted.Render(subtitle)
			}
			fmt.Fprintln(w, line)

			if n, ok := item.(search.NotificationResult); ok {
				for _, a := range n.Actions {
					label := a.Title
					if a.RequiresTextInput {
						label += " …"
					}
					fmt.Fprintf(w, "      ↳ %d %s\n", a.Index, label)
				}
			}
		}
	}
}

func describeItem(item search.ResultItem, titles map[string]string) (string, string) {
	switch it := item.(type) {
	case search.AppResult:
		if t, ok := titles[it.EntryID]; ok {
			return t, it.EntryID
		}
		return it.EntryID, ""
	case search.ActionResult:
		return it.Title, it.Subtitle
	case search.ContactResult:
		return it.Title, it.Subtitle
	case search.SearchTemplateResult:
		return it.Title, it.Query
	case search.NotificationResult:
		return it.Title, oneLine(it.Subtitle)
	default:
		return item.Key(), ""
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
