package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for Web Waiter.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webwaiter",
		Short: "Inspect web pages for metadata, icons and design assets",
		Long: `Web Waiter serves up everything a page says about itself.

It loads a page (statically or in headless Chrome), reads its metadata,
resolves every icon and social image to its real dimensions, extracts the
theme colors and detects the tech stack. Reports are printed as text or
written as JSON, Markdown or a self-contained HTML page, and every
inspection is kept in a local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewDownloadCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
