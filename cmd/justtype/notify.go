package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/pders01/justtype/internal/executor"
	"github.com/pders01/justtype/internal/notify"
	"github.com/pders01/justtype/internal/search"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Inspect and act on notifications",
	Long: `Inspect and act on notifications. Notifications are loaded from the
--notifications file and, with --poll, from the configured feeds.`,
}

var notifyPoll bool

var notifySearchCmd = &cobra.Command{
	Use:   "search [text...]",
	Short: "Search notification titles, bodies and people",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openNotifyRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := search.DefaultNotificationOptions()
		opts.MatchBody = rt.cfg.Notifications.MatchBody
		opts.MatchNames = rt.cfg.Notifications.MatchNames
		if rt.cfg.Notifications.MaxResults > 0 {
			opts.MaxResults = rt.cfg.Notifications.MaxResults
		}

		query := strings.Join(args, " ")
		var results []search.NotificationResult
		if strings.TrimSpace(query) == "" {
			results = search.AllNotifications(rt.index, nil, opts)
		} else {
			results = search.SearchNotifications(rt.index, query, opts)
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No notifications")
			return nil
		}
		for _, r := range results {
			state := "history"
			if r.IsLive {
				state = "live"
			}
			fmt.Fprintf(out, "%s\t%s\t%s\n", r.NotificationKey, state, r.Title)
		}
		return nil
	},
}

var notifyShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Render one notification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openNotifyRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		s, ok := rt.index.Get(args[0])
		if !ok {
			return fmt.Errorf("notification %s not found", args[0])
		}

		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			return err
		}
		rendered, err := r.Render(notificationMarkdown(s))
		if err != nil {
			return fmt.Errorf("rendering notification: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

var notifyOpenCmd = &cobra.Command{
	Use:   "open <key>",
	Short: "Send a notification's open action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openNotifyRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		return reportResult(cmd, rt.executor.ExecuteOpen(cmd.Context(), args[0]))
	},
}

var notifyActionCmd = &cobra.Command{
	Use:   "action <key> <index> [text...]",
	Short: "Send one of a notification's actions, with optional reply text",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid action index %q: %w", args[1], err)
		}
		rt, err := openNotifyRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		text := strings.Join(args[2:], " ")
		return reportResult(cmd, rt.executor.ExecuteAction(cmd.Context(), args[0], index, text))
	},
}

func openNotifyRuntime(cmd *cobra.Command) (*runtime, error) {
	rt, err := openRuntime(runtimeOptions{notifications: true, feeds: notifyPoll})
	if err != nil {
		return nil, err
	}
	if notifyPoll {
		if err := rt.feeds.PollAll(cmd.Context()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "some feeds failed: %v\n", err)
		}
	}
	return rt, nil
}

// reportResult prints an execution outcome. Failures become the command's
// error so the exit status reflects them.
func reportResult(cmd *cobra.Command, res executor.Result) error {
	switch r := res.(type) {
	case executor.Success:
		fmt.Fprintln(cmd.OutOrStdout(), "sent")
		return nil
	case executor.NotificationDismissed:
		return fmt.Errorf("notification %s is no longer live", r.Key)
	case executor.IntentCancelled:
		return fmt.Errorf("notification %s: action was cancelled: %w", r.Key, r.Cause)
	case executor.Error:
		return r
	default:
		return errors.New("unknown result")
	}
}

func notificationMarkdown(s notify.Surface) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Title)

	state := "live"
	if !s.Live {
		state = "dismissed " + s.DismissedAt.Local().Format(time.DateTime)
	}
	fmt.Fprintf(&b, "*%s* · %s · %s\n\n", s.Package, s.PostedAt.Local().Format(time.DateTime), state)

	if s.Body != "" {
		fmt.Fprintf(&b, "%s\n\n", s.Body)
	}
	if len(s.People) > 0 {
		fmt.Fprintf(&b, "**People:** %s\n\n", strings.Join(s.People, ", "))
	}
	if len(s.Actions) > 0 {
		b.WriteString("## Actions\n\n")
		for i, a := range s.Actions {
			line := fmt.Sprintf("- [%d] %s", i, a.Title)
			if a.RequiresTextInput() {
				line += " (accepts text)"
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func init() {
	notifyCmd.PersistentFlags().BoolVar(&notifyPoll, "poll", false, "poll configured feeds first")
	notifyCmd.AddCommand(notifySearchCmd, notifyShowCmd, notifyOpenCmd, notifyActionCmd)
	rootCmd.AddCommand(notifyCmd)
}
