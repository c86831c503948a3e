package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wikitree/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "wikitree.db"

// CrawlDB provides SQLite-based storage for finished crawl reports.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS crawls (
		id TEXT PRIMARY KEY,
		root_url TEXT NOT NULL,
		root_name TEXT,
		height INTEGER NOT NULL,
		node_count INTEGER NOT NULL,
		rejected INTEGER NOT NULL,
		image_failures INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		report_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_root ON crawls(root_url);
	CREATE INDEX IF NOT EXISTS idx_crawls_started ON crawls(started_at);

	CREATE TABLE IF NOT EXISTS nodes (
		crawl_id TEXT NOT NULL REFERENCES crawls(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		level INTEGER NOT NULL,
		url TEXT NOT NULL,
		name TEXT NOT NULL,
		image_path TEXT,
		intro_sentence TEXT,
		image_ok INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (crawl_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_url ON nodes(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawlReport stores a finished report. Saving the same job twice
// replaces the earlier rows.
func (cdb *CrawlDB) SaveCrawlReport(ctx context.Context, report *model.CrawlReport) (err error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	rootName := ""
	if report.Root != nil {
		rootName = report.Root.Name
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
	INSERT OR REPLACE INTO crawls
		(id, root_url, root_name, height, node_count, rejected, image_failures, started_at, duration_ms, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.Job.ID,
		report.Job.RootURL,
		rootName,
		report.Job.Height,
		report.NodeCount(),
		report.Rejected,
		len(report.FailedImages()),
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.Duration.Milliseconds(),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM nodes WHERE crawl_id = ?`, report.Job.ID); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO nodes (crawl_id, position, level, url, name, image_path, intro_sentence, image_ok)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer stmt.Close()

	position := 0
	for level, nodes := range model.Levels(report.Root) {
		for _, node := range nodes {
			imageOK := 0
			if report.ImageAvailable(node.URL) {
				imageOK = 1
			}
			if _, err = stmt.ExecContext(ctx,
				report.Job.ID, position, level, node.URL, node.Name, node.ImagePath, node.IntroSentence, imageOK,
			); err != nil {
				return fmt.Errorf("failed to save node %s: %w", node.URL, err)
			}
			position++
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit crawl: %w", err)
	}
	return nil
}

// CrawlSummary contains summary information about a stored crawl.
// This is used for listing history without loading the full report.
type CrawlSummary struct {
	ID            string
	RootURL       string
	RootName      string
	Height        int
	NodeCount     int
	Rejected      int
	ImageFailures int
	StartedAt     time.Time
	Duration      time.Duration
}

// ListCrawls returns stored crawls, newest first. An empty rootURL lists
// every crawl.
func (cdb *CrawlDB) ListCrawls(ctx context.Context, rootURL string) ([]CrawlSummary, error) {
	query := `
	SELECT id, root_url, COALESCE(root_name, ''), height, node_count, rejected, image_failures, started_at, duration_ms
	FROM crawls
	WHERE ? = '' OR root_url = ?
	ORDER BY started_at DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query, rootURL, rootURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawls: %w", err)
	}
	defer rows.Close()

	results := make([]CrawlSummary, 0)
	for rows.Next() {
		var s CrawlSummary
		var startedAt string
		var durationMS int64
		if err := rows.Scan(&s.ID, &s.RootURL, &s.RootName, &s.Height, &s.NodeCount,
			&s.Rejected, &s.ImageFailures, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan crawl: %w", err)
		}
		s.StartedAt = parseTimestamp(startedAt)
		s.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, s)
	}

	return results, rows.Err()
}

// ListRoots returns every root URL that has a stored crawl.
func (cdb *CrawlDB) ListRoots(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `SELECT DISTINCT root_url FROM crawls ORDER BY root_url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roots: %w", err)
	}
	defer rows.Close()

	roots := make([]string, 0)
	for rows.Next() {
		var root string
		if err := rows.Scan(&root); err != nil {
			return nil, fmt.Errorf("failed to scan root: %w", err)
		}
		roots = append(roots, root)
	}

	return roots, rows.Err()
}

// GetCrawl retrieves a stored report by job ID.
// It returns nil without error if no crawl has that ID.
func (cdb *CrawlDB) GetCrawl(ctx context.Context, id string) (*model.CrawlReport, error) {
	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, `SELECT report_json FROM crawls WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// NodeRecord is a stored tree node.
type NodeRecord struct {
	Position      int
	Level         int
	URL           string
	Name          string
	ImagePath     string
	IntroSentence string
	ImageOK       bool
}

// GetCrawlNodes returns the nodes of a stored crawl in level order.
func (cdb *CrawlDB) GetCrawlNodes(ctx context.Context, id string) ([]NodeRecord, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT position, level, url, name, COALESCE(image_path, ''), COALESCE(intro_sentence, ''), image_ok
	FROM nodes
	WHERE crawl_id = ?
	ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]NodeRecord, 0)
	for rows.Next() {
		var n NodeRecord
		var imageOK int
		if err := rows.Scan(&n.Position, &n.Level, &n.URL, &n.Name, &n.ImagePath, &n.IntroSentence, &imageOK); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n.ImageOK = imageOK == 1
		nodes = append(nodes, n)
	}

	return nodes, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
