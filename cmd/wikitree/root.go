package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wikitree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikitree",
		Short: "Build a tree of people linked from an encyclopedia biography",
		Long: `wikitree crawls an encyclopedia starting at a biography article.

Every person article linked from a page becomes a child of that page's
person, up to two children per person and down to a chosen height. Each
person's portrait is downloaded and the sentence in the parent article that
mentions them is kept. The tree is reported level by level.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
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
