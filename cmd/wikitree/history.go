package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/nao1215/wikitree/internal/config"
	"github.com/nao1215/wikitree/internal/database"
	"github.com/nao1215/wikitree/internal/report"
)

// ErrCrawlNotFound is returned when --id names no stored crawl.
var ErrCrawlNotFound = errors.New("crawl not found")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [article-url]",
		Short: "List or show crawls saved with --save",
		Long: `History reads the crawls stored by 'wikitree crawl --save'.

Without arguments every stored crawl is listed, newest first. With an
article URL only crawls of that root are listed. Use --id to print one
stored crawl as a full report.

Examples:
  # List every stored crawl
  wikitree history

  # List crawls of one root
  wikitree history https://en.wikipedia.org/wiki/Ada_Lovelace

  # List the roots that have stored crawls
  wikitree history --roots

  # Show a stored crawl as JSON
  wikitree history --id 3f1c... --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("id", "i", "",
		"Show the stored crawl with this ID")
	cmd.Flags().BoolP("roots", "R", false,
		"List the root articles that have stored crawls")
	cmd.Flags().BoolP("json", "j", false,
		"Show the crawl as JSON (with --id)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Show the crawl as Markdown (with --id)")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	id, err := flags.GetString("id")
	if err != nil {
		return err
	}
	listRoots, err := flags.GetBool("roots")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}

	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case listRoots:
		return printRoots(ctx, out, db)
	case id != "":
		return showCrawl(ctx, out, db, id, jsonOutput, markdownOutput)
	default:
		root := ""
		if len(args) > 0 {
			root = args[0]
		}
		return printHistory(ctx, out, db, root)
	}
}

func printRoots(ctx context.Context, out io.Writer, db *database.CrawlDB) error {
	roots, err := db.ListRoots(ctx)
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		fmt.Fprintln(out, "No stored crawls.")
		return nil
	}

	fmt.Fprintf(out, "Crawled roots (%d):\n\n", len(roots))
	for _, root := range roots {
		fmt.Fprintf(out, "  • %s\n", root)
	}
	return nil
}

func printHistory(ctx context.Context, out io.Writer, db *database.CrawlDB, root string) error {
	crawls, err := db.ListCrawls(ctx, root)
	if err != nil {
		return err
	}
	if len(crawls) == 0 {
		if root != "" {
			fmt.Fprintf(out, "No stored crawls for %s\n", root)
		} else {
			fmt.Fprintln(out, "No stored crawls.")
		}
		return nil
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Started", "Root", "Height", "Nodes", "Rejected", "Failed images", "Duration"})
	for _, c := range crawls {
		name := c.RootName
		if name == "" {
			name = c.RootURL
		}
		tw.AppendRow(table.Row{
			c.ID,
			humanize.Time(c.StartedAt),
			name,
			strconv.Itoa(c.Height),
			strconv.Itoa(c.NodeCount),
			strconv.Itoa(c.Rejected),
			strconv.Itoa(c.ImageFailures),
			c.Duration.String(),
		})
	}
	rightAligned := make([]table.ColumnConfig, 0, 4)
	for _, n := range []int{4, 5, 6, 7} {
		rightAligned = append(rightAligned, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(rightAligned)

	fmt.Fprintf(out, "Stored crawls (%d):\n", len(crawls))
	fmt.Fprintln(out, tw.Render())
	return nil
}

func showCrawl(ctx context.Context, out io.Writer, db *database.CrawlDB, id string, jsonOutput, markdownOutput bool) error {
	stored, err := db.GetCrawl(ctx, id)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("%w: %s", ErrCrawlNotFound, id)
	}

	var w report.Writer
	switch {
	case jsonOutput:
		w = report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case markdownOutput:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithImagePaths(true))
	}
	_, err = w.Write(stored)
	return err
}
