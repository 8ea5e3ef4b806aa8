package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/justtype/internal/contacts"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage the contact directory",
}

var contactsImportCmd = &cobra.Command{
	Use:   "import <file.toml>",
	Short: "Index the [[contacts]] of a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := readContacts(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir, err := contacts.Open(cfg.Search.ContactsIndex, contacts.DefaultProviderID)
		if err != nil {
			return err
		}
		defer dir.Close()

		if err := dir.Index(list); err != nil {
			return fmt.Errorf("indexing contacts: %w", err)
		}
		total, err := dir.Count()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d contacts (%d total)\n", len(list), total)
		return nil
	},
}

func init() {
	contactsCmd.AddCommand(contactsImportCmd)
	rootCmd.AddCommand(contactsCmd)
}
