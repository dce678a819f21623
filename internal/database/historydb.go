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

	"github.com/nao1215/webwaiter/internal/model"
)

// DBFileName is the file name of the history database inside its directory.
const DBFileName = "webwaiter.db"

var (
	// ErrDatabaseNotFound is returned by Open when the database does not
	// exist and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("history database not found")

	// ErrDirtySchema is returned when a previous migration failed halfway.
	ErrDirtySchema = errors.New("history database schema is dirty")
)

// HistoryDB stores inspection reports and downloads.
type HistoryDB struct {
	db            *sql.DB
	dbPath        string
	schemaVersion uint
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if needed.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir and migrates its
// schema to the latest version.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	mode := "rwc"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		mode = "rw"
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode+"&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; inspections of a batch save one at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	version, err := runMigrations(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &HistoryDB{db: db, dbPath: dbPath, schemaVersion: version}, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// SchemaVersion returns the migration version the schema is at.
func (h *HistoryDB) SchemaVersion() uint {
	return h.schemaVersion
}

// SaveReport stores report and its downloads and returns the inspection ID.
func (h *HistoryDB) SaveReport(ctx context.Context, report *model.Report) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	summaryJSON, err := json.Marshal(report.Summarize())
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO inspections (report_id, target, provider, inspected_at, report_json, summary_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		report.ID,
		report.Target,
		report.Provider,
		formatTimestamp(report.DateInspected),
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inspection id: %w", err)
	}

	for _, d := range report.Downloads {
		if err := insertDownload(ctx, tx, sql.NullInt64{Int64: id, Valid: true}, d, report.DateInspected); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit report: %w", err)
	}
	return id, nil
}

// SaveDownload records a download that is not part of an inspection, such
// as one made by `webwaiter download`.
func (h *HistoryDB) SaveDownload(ctx context.Context, d model.Download) error {
	return insertDownload(ctx, h.db, sql.NullInt64{}, d, time.Now())
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertDownload(ctx context.Context, db execer, inspectionID sql.NullInt64, d model.Download, at time.Time) error {
	_, err := db.ExecContext(ctx, `
	INSERT INTO downloads (inspection_id, url, path, bytes, sha3, downloaded_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`, inspectionID, d.URL, d.Path, d.Bytes, d.SHA3, formatTimestamp(at))
	if err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}
	return nil
}

// GetLatestReport returns the most recent report for target, or nil if the
// target was never inspected.
func (h *HistoryDB) GetLatestReport(ctx context.Context, target string) (*model.Report, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, `
	SELECT report_json FROM inspections
	WHERE target = ?
	ORDER BY inspected_at DESC, id DESC
	LIMIT 1
	`, target).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return decodeReport(reportJSON)
}

// GetReportByID returns the report with the given inspection ID, or nil.
func (h *HistoryDB) GetReportByID(ctx context.Context, id int64) (*model.Report, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, `SELECT report_json FROM inspections WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return decodeReport(reportJSON)
}

// ListTargets returns every inspected target in alphabetical order.
func (h *HistoryDB) ListTargets(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT target FROM inspections ORDER BY target`)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

// GetHistory returns every report for target, newest first. Reports that
// no longer decode are skipped.
func (h *HistoryDB) GetHistory(ctx context.Context, target string) ([]*model.Report, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT report_json FROM inspections
	WHERE target = ?
	ORDER BY inspected_at DESC, id DESC
	`, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var reports []*model.Report
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		report, err := decodeReport(reportJSON)
		if err != nil {
			continue
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// InspectionMetadata describes a stored inspection without its report.
type InspectionMetadata struct {
	ID        int64
	ReportID  string
	Target    string
	Provider  string
	Timestamp time.Time
	Summary   model.Summary
}

// GetHistoryWithMetadata lists the inspections of target, newest first.
// An empty target lists every inspection.
func (h *HistoryDB) GetHistoryWithMetadata(ctx context.Context, target string) ([]InspectionMetadata, error) {
	query := `
	SELECT id, report_id, target, provider, inspected_at, summary_json
	FROM inspections
	`
	var args []any
	if target != "" {
		query += "WHERE target = ?\n"
		args = append(args, target)
	}
	query += "ORDER BY inspected_at DESC, id DESC"

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []InspectionMetadata
	for rows.Next() {
		var (
			meta      InspectionMetadata
			provider  sql.NullString
			timestamp string
			summary   sql.NullString
		)
		if err := rows.Scan(&meta.ID, &meta.ReportID, &meta.Target, &provider, &timestamp, &summary); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.Provider = provider.String
		meta.Timestamp = parseTimestamp(timestamp)
		if summary.Valid && summary.String != "" {
			_ = json.Unmarshal([]byte(summary.String), &meta.Summary) //nolint:errcheck // a broken summary shows as zero counts
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

// GetDownloads returns the downloads recorded for an inspection.
func (h *HistoryDB) GetDownloads(ctx context.Context, inspectionID int64) ([]model.Download, error) {
	return h.queryDownloads(ctx, `
	SELECT url, path, bytes, sha3 FROM downloads
	WHERE inspection_id = ?
	ORDER BY id
	`, inspectionID)
}

// FindDownloadsByDigest returns every download with the given SHA3 digest,
// which finds the same image saved from different pages.
func (h *HistoryDB) FindDownloadsByDigest(ctx context.Context, sha3 string) ([]model.Download, error) {
	return h.queryDownloads(ctx, `
	SELECT url, path, bytes, sha3 FROM downloads
	WHERE sha3 = ?
	ORDER BY id
	`, sha3)
}

func (h *HistoryDB) queryDownloads(ctx context.Context, query string, args ...any) ([]model.Download, error) {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get downloads: %w", err)
	}
	defer rows.Close()

	var downloads []model.Download
	for rows.Next() {
		var d model.Download
		if err := rows.Scan(&d.URL, &d.Path, &d.Bytes, &d.SHA3); err != nil {
			return nil, fmt.Errorf("failed to scan download: %w", err)
		}
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}

func decodeReport(reportJSON string) (*model.Report, error) {
	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no known format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
