package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pders01/justtype/internal/storage"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List and configure result providers",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers in category order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *storage.Store) error {
			configs, err := store.Providers()
			if err != nil {
				return err
			}
			defaultID, err := store.DefaultSearch()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tENABLED\tORDER\tNAME")
			for _, c := range configs {
				id := c.ID
				if id == defaultID {
					id += "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\t%d\t%s\n", id, c.Category, c.Enabled, c.Order, c.Label())
			}
			return tw.Flush()
		})
	},
}

var providersEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], true)
	},
}

var providersDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], false)
	},
}

var providersDefaultCmd = &cobra.Command{
	Use:   "default <id>",
	Short: "Choose the default search provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *storage.Store) error {
			if err := store.SetDefaultSearch(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default search provider: %s\n", args[0])
			return nil
		})
	},
}

var providersOrderCmd = &cobra.Command{
	Use:   "order <id> <n>",
	Short: "Set a provider's position within its category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid order %q: %w", args[1], err)
		}
		return withStore(func(store *storage.Store) error {
			if err := store.SetOrder(args[0], order); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s order set to %d\n", args[0], order)
			return nil
		})
	},
}

func setEnabled(cmd *cobra.Command, id string, enabled bool) error {
	return withStore(func(store *storage.Store) error {
		if err := store.SetEnabled(id, enabled); err != nil {
			return err
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", id, state)
		return nil
	})
}

// withStore opens the seeded store for the duration of fn.
func withStore(fn func(*storage.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func init() {
	providersCmd.AddCommand(providersListCmd, providersEnableCmd, providersDisableCmd, providersDefaultCmd, providersOrderCmd)
	rootCmd.AddCommand(providersCmd)
}
