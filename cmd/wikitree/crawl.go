package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/nao1215/wikitree/internal/config"
	"github.com/nao1215/wikitree/internal/crawler"
	"github.com/nao1215/wikitree/internal/database"
	"github.com/nao1215/wikitree/internal/fetch"
	"github.com/nao1215/wikitree/internal/images"
	wtlog "github.com/nao1215/wikitree/internal/log"
	"github.com/nao1215/wikitree/internal/model"
	"github.com/nao1215/wikitree/internal/pipeline"
	"github.com/nao1215/wikitree/internal/report"
	"github.com/nao1215/wikitree/internal/tor"
)

// ErrCrawlFailed is returned when at least one root article could not be crawled.
var ErrCrawlFailed = errors.New("crawl failed")

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [article-url...]",
		Short: "Build a person tree from one or more biography articles",
		Long: `Crawl builds a tree of people starting at each biography article given.

For every person the first two linked articles that are themselves
biographies become children. Articles already in the tree are skipped, so
each person appears at most once. After the tree is complete, every
portrait is downloaded into the image directory.

When no URL is given and the terminal is interactive, wikitree asks for
the article and the height.

Examples:
  # Three levels below Ada Lovelace
  wikitree crawl -H 3 https://en.wikipedia.org/wiki/Ada_Lovelace

  # Two roots at once, JSON output saved to a file
  wikitree crawl --json -o out/tree.json \
    https://en.wikipedia.org/wiki/Alan_Turing \
    https://en.wikipedia.org/wiki/Grace_Hopper

  # Keep the result for 'wikitree history'
  wikitree crawl --save https://en.wikipedia.org/wiki/Marie_Curie

  # Route every request through an embedded Tor daemon
  wikitree crawl --tor https://en.wikipedia.org/wiki/Nikola_Tesla`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Tree shape
	cmd.Flags().IntP("height", "H", config.DefaultHeight,
		"Number of levels below the root article")

	// Fetching
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent portrait downloads")
	cmd.Flags().StringP("image-dir", "i", config.DefaultImageDir,
		"Directory portraits are written to")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().IntP("retries", "r", config.DefaultRetries,
		"Retries for temporary fetch failures (timeouts, 429, 5xx)")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:1080)")
	cmd.Flags().Bool("tor", false,
		"Route requests through an embedded Tor daemon (cannot be combined with --proxy)")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Maximum time to wait for the embedded Tor daemon to bootstrap")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of root articles crawled concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikitree in current or home directory)")

	// Report
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Also write the report to this file (creates directories if needed)")
	cmd.Flags().BoolP("save", "s", false,
		"Save the result to the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if len(cfg.RootURLs) == 0 && isInteractive(cmd.InOrStdin()) {
		root, height, err := promptForRoot(cmd.InOrStdin(), cmd.OutOrStdout(), cfg.Height)
		if err != nil {
			return err
		}
		cfg.RootURLs = []string{root}
		cfg.Height = height
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the
// configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.Height, err = flags.GetInt("height"); err != nil {
		return nil, err
	}
	if cfg.Workers, err = flags.GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.ImageDir, err = flags.GetString("image-dir"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Retries, err = flags.GetInt("retries"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.SaveToDB, err = flags.GetBool("save"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// The configuration file is optional unless a path was given explicitly.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		if cfg.Site, err = config.LoadConfigFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load configuration file: %w", err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.RootURLs = args
	return cfg, nil
}

// isInteractive reports whether r is a terminal.
func isInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptForRoot asks for the root article and the height. An empty height
// answer keeps defaultHeight.
func promptForRoot(in io.Reader, out io.Writer, defaultHeight int) (string, int, error) {
	scanner := bufio.NewScanner(in)

	fmt.Fprint(out, "Enter the URL of a person's article: ")
	if !scanner.Scan() {
		return "", 0, errors.New("no article URL entered")
	}
	root := strings.TrimSpace(scanner.Text())
	if root == "" {
		return "", 0, errors.New("no article URL entered")
	}

	fmt.Fprintf(out, "How deep should the tree be? (recommended under 3) [%d]: ", defaultHeight)
	if !scanner.Scan() {
		return root, defaultHeight, scanner.Err()
	}
	answer := strings.TrimSpace(scanner.Text())
	if answer == "" {
		return root, defaultHeight, nil
	}
	height, err := strconv.Atoi(answer)
	if err != nil {
		return "", 0, fmt.Errorf("invalid height %q: %w", answer, err)
	}
	return root, height, nil
}

// setupLogger creates a structured logger that masks configured cookies
// and headers.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return wtlog.NewSecureLogger(w, verbose)
}

// startTor launches the embedded Tor daemon and points cfg at its SOCKS5
// port. The returned function stops the daemon.
func startTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (func(), error) {
	daemon := tor.NewDaemon(tor.WithStartupTimeout(cfg.TorStartupTimeout))

	logger.Info("starting embedded Tor daemon", "timeout", cfg.TorStartupTimeout)
	if err := daemon.Start(ctx); err != nil {
		return nil, err
	}

	proxy, err := daemon.ProxyAddress()
	if err != nil {
		_ = daemon.Stop() //nolint:errcheck // already failing
		return nil, err
	}
	cfg.ProxyAddress = proxy
	logger.Info("embedded Tor daemon ready", "socks", proxy)

	return func() {
		if err := daemon.Stop(); err != nil {
			logger.Warn("failed to stop embedded Tor daemon", "error", err)
		}
	}, nil
}

// newFetcher builds the shared article fetcher: an HTTP client with the
// configured proxy and headers, a retry policy and an in-flight limit.
func newFetcher(cfg *config.Config) (fetch.Fetcher, error) {
	client, err := fetch.NewHTTPClient(cfg.ClientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	var f fetch.Fetcher = fetch.NewHTTPFetcher(client,
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	)
	f = fetch.NewRetryFetcher(f, cfg.Retries, cfg.RetryBackoff)
	return fetch.NewLimitedFetcher(f, cfg.MaxInFlight), nil
}

// newCrawlPipeline creates the pipeline for one job.
func newCrawlPipeline(cfg *config.Config, fetcher fetch.Fetcher, saver pipeline.ReportSaver, logger *slog.Logger) *pipeline.Pipeline {
	builderOpts := []crawler.Option{
		crawler.WithImageDir(cfg.ImageDir),
		crawler.WithLogger(logger),
	}
	if cfg.Site != nil {
		builderOpts = append(builderOpts,
			crawler.WithArticlePrefix(cfg.Site.Article.Prefix),
			crawler.WithInfoboxClasses(cfg.Site.Article.InfoboxClasses),
			crawler.WithBirthLabels(cfg.Site.Article.BirthLabels),
		)
	}

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewBuildTreeStep(crawler.NewBuilder(fetcher, builderOpts...), logger),
		pipeline.NewFetchImagesStep(images.NewFetcher(fetcher,
			images.WithWorkers(cfg.Workers),
			images.WithLogger(logger),
		), logger),
		pipeline.NewSerializeStep(),
	)
	if saver != nil {
		p.AddStep(pipeline.NewExportStep(saver, logger))
	}
	return p
}

// runCrawl crawls every root and writes one report per root.
func runCrawl(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	lock, err := images.Lock(cfg.ImageDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to unlock image directory", "error", err)
		}
	}()

	var saver pipeline.ReportSaver
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
		saver = db
	}

	if cfg.UseTor {
		stop, err := startTor(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	writer, closeReport, err := newReportWriter(cfg, out)
	if err != nil {
		return err
	}
	defer closeReport()

	jobs := make([]model.CrawlJob, len(cfg.RootURLs))
	for i, root := range cfg.RootURLs {
		jobs[i] = model.NewCrawlJob(root, cfg.Height)
	}

	logger.Info("starting crawl",
		"roots", cfg.RootURLs,
		"height", cfg.Height,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return newCrawlPipeline(cfg, fetcher, saver, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var (
		mu     sync.Mutex
		failed []string
	)
	err = bp.ProcessBatchWithCallback(ctx, jobs, func(r *model.CrawlReport, _ int) {
		mu.Lock()
		defer mu.Unlock()

		if r.Failed() {
			failed = append(failed, r.Job.RootURL)
		}
		if _, err := writer.Write(r); err != nil {
			logger.Error("report failed", "root", r.Job.RootURL, "error", err)
		}
	})
	if err != nil {
		return err
	}

	logger.Info("crawl complete",
		"roots", len(jobs),
		"failed", len(failed),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	if len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d roots (%s)", ErrCrawlFailed, len(failed), len(jobs), strings.Join(failed, ", "))
	}
	return nil
}

// newReportWriter returns the writer for the selected format. With
// ReportFile set, the report also goes to that file.
func newReportWriter(cfg *config.Config, out io.Writer) (report.Writer, func(), error) {
	newWriter := func(w io.Writer) report.Writer {
		switch {
		case cfg.JSONReport:
			return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
		case cfg.MarkdownReport:
			return report.NewMarkdownWriter(w)
		default:
			return report.NewSimpleWriter(w)
		}
	}

	if cfg.ReportFile == "" {
		return newWriter(out), func() {}, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return report.NewMultiWriter(newWriter(out), newWriter(f)), func() { _ = f.Close() }, nil //nolint:errcheck
}
