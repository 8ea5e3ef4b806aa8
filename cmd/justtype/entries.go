package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/justtype/internal/storage"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Manage launchable entries",
}

var entriesImportCmd = &cobra.Command{
	Use:   "import <file.toml>",
	Short: "Replace the entry snapshot from a TOML file",
	Long: `Replace the stored entry snapshot with the [[entries]] of a TOML file.
A top-level favorites list, when present, replaces the stored favorites.
Recorded launch times survive the import.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := readEntries(args[0])
		if err != nil {
			return err
		}
		return withStore(func(store *storage.Store) error {
			if err := store.SaveEntries(f.Entries); err != nil {
				return fmt.Errorf("saving entries: %w", err)
			}
			if f.Favorites != nil {
				if err := store.SetFavorites(f.Favorites); err != nil {
					return fmt.Errorf("saving favorites: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries\n", len(f.Entries))
			return nil
		})
	},
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *storage.Store) error {
			entries, err := store.Entries()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tPINNED\tHIDDEN\tLAST LAUNCHED")
			for _, e := range entries {
				last := "-"
				if e.LastLaunched != nil {
					last = e.LastLaunched.Local().Format(time.DateTime)
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%s\n", e.ID, e.Title, e.Pinned, e.Hidden, last)
			}
			return tw.Flush()
		})
	},
}

var entriesLaunchCmd = &cobra.Command{
	Use:   "launch <id>",
	Short: "Record a launch of an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *storage.Store) error {
			if err := store.MarkLaunched(args[0], time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Launched %s\n", args[0])
			return nil
		})
	},
}

func init() {
	entriesCmd.AddCommand(entriesImportCmd, entriesListCmd, entriesLaunchCmd)
	rootCmd.AddCommand(entriesCmd)
}
