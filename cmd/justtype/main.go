package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/justtype/internal/debuglog"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	cfgFile           string
	dbPath            string
	notificationsFile string
	logLevel          string

	rootCmd = &cobra.Command{
		Use:   "justtype",
		Short: "justtype: universal search over apps, notifications, contacts and the web",
		Long: `justtype ranks launchable apps, live and recent notifications, contacts,
quick actions and web searches for whatever you type, and executes the
result you pick.

Start typing with "@apps", "@notif", "@contacts", "@actions" or "@search"
to restrict results to one category.`,
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "justtype %s\n", Version)
			fmt.Fprintln(out, "Universal search")
			fmt.Fprintln(out, "github.com/pders01/justtype")
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to configuration file (default ~/.config/justtype/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&notificationsFile, "notifications", "", "TOML file of notifications to post at startup")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: off, error, warn, info, debug (overrides config)")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	err := rootCmd.Execute()
	_ = debuglog.Close()
	if err != nil {
		os.Exit(1)
	}
}
