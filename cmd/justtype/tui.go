package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/justtype/internal/notify"
	"github.com/pders01/justtype/internal/tui"
)

var quiet bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive search screen",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(runtimeOptions{contacts: true, notifications: true, feeds: true})
		if err != nil {
			return err
		}
		defer rt.Close()

		if !quiet {
			tui.ShowBanner(Version)
		}
		tui.ApplyColors(rt.cfg.UI.Colors)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sweeper := notify.NewSweeper(rt.index, rt.cfg.Notifications.Retention, rt.cfg.Notifications.SweepInterval)
		go sweeper.Run(ctx)
		go rt.feeds.Run(ctx, rt.cfg.Feeds.PollInterval)

		app := tui.NewApp(tui.Options{
			Config:   rt.cfg,
			Engine:   rt.engine,
			Catalog:  rt.store,
			Contacts: rt.contacts,
			Index:    rt.index,
			Executor: rt.executor,
			Opener:   rt.launcher,
		})
		defer app.Close()

		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running search screen: %w", err)
		}
		return nil
	},
}

func init() {
	tuiCmd.Flags().BoolVar(&quiet, "quiet", false, "skip startup banner")
	rootCmd.AddCommand(tuiCmd)
}
