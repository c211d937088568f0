// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite catalog of converted filings. Each row is
// keyed by output PDF path and carries the filing fields together with the
// outcome of its most recent conversion attempt.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/filing-converter/pkg/types"
)

const defaultLimit = 100

// Filing is one catalog row.
type Filing struct {
	OutputPath       string                 `json:"output_path"`
	Identifier       string                 `json:"identifier"`
	TaxPeriod        string                 `json:"tax_period"`
	OrganizationName string                 `json:"organization_name"`
	State            string                 `json:"state"`
	Zipcode          string                 `json:"zipcode"`
	FilingType       string                 `json:"filing_type"`
	Revenue          string                 `json:"revenue,omitempty"`
	FilingDate       string                 `json:"filing_date"`
	SourceLine       int                    `json:"source_line"`
	Images           int                    `json:"images"`
	Pages            int                    `json:"pages"`
	Status           types.ConversionStatus `json:"status"`
	Error            string                 `json:"error,omitempty"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// QueryOptions filters List. Empty fields match everything.
type QueryOptions struct {
	State      string
	FilingType string
	Status     types.ConversionStatus
	Limit      int
}

// Store manages the catalog database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the catalog at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS filings (
			output_path TEXT PRIMARY KEY,
			identifier TEXT NOT NULL,
			tax_period TEXT,
			organization_name TEXT,
			state TEXT,
			zipcode TEXT,
			filing_type TEXT,
			revenue TEXT,
			filing_date TEXT,
			source_line INTEGER,
			images INTEGER,
			pages INTEGER,
			status TEXT NOT NULL,
			error TEXT,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_filings_state ON filings(state)`,
		`CREATE INDEX IF NOT EXISTS idx_filings_type ON filings(filing_type)`,
		`CREATE INDEX IF NOT EXISTS idx_filings_status ON filings(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record upserts the outcome of one job. A skipped job keeps the status,
// page count, and error of the attempt that produced the existing PDF.
func (s *Store) Record(ctx context.Context, job types.ConversionJob, status types.ConversionStatus, pages int, cause error) error {
	var errText string
	if cause != nil {
		errText = cause.Error()
	}
	rec := job.Record

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO filings (
			output_path, identifier, tax_period, organization_name, state, zipcode,
			filing_type, revenue, filing_date, source_line, images, pages, status, error, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(output_path) DO UPDATE SET
			identifier = excluded.identifier,
			tax_period = excluded.tax_period,
			organization_name = excluded.organization_name,
			state = excluded.state,
			zipcode = excluded.zipcode,
			filing_type = excluded.filing_type,
			revenue = excluded.revenue,
			filing_date = excluded.filing_date,
			source_line = excluded.source_line,
			images = excluded.images,
			pages = CASE WHEN excluded.status = 'skipped' THEN filings.pages ELSE excluded.pages END,
			error = CASE WHEN excluded.status = 'skipped' THEN filings.error ELSE excluded.error END,
			status = CASE WHEN excluded.status = 'skipped' THEN filings.status ELSE excluded.status END,
			updated_at = excluded.updated_at`,
		job.OutputPath, rec.Identifier, rec.TaxPeriod, rec.OrganizationName, rec.State, rec.Zipcode,
		rec.FilingType, rec.Revenue, rec.FilingDate, rec.Line, len(job.Inputs), pages,
		string(status), errText, s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", job.OutputPath, err)
	}
	return nil
}

// List returns catalog rows matching opts, ordered by identifier and tax period.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]Filing, error) {
	var where []string
	var args []any
	if opts.State != "" {
		where = append(where, "state = ?")
		args = append(args, strings.ToUpper(opts.State))
	}
	if opts.FilingType != "" {
		where = append(where, "filing_type = ?")
		args = append(args, opts.FilingType)
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(opts.Status))
	}

	query := `SELECT output_path, identifier, tax_period, organization_name, state, zipcode,
		filing_type, revenue, filing_date, source_line, images, pages, status, error, updated_at
		FROM filings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY identifier, tax_period, filing_type LIMIT ?"

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying filings: %w", err)
	}
	defer rows.Close()

	var filings []Filing
	for rows.Next() {
		var f Filing
		var status, updated string
		if err := rows.Scan(&f.OutputPath, &f.Identifier, &f.TaxPeriod, &f.OrganizationName,
			&f.State, &f.Zipcode, &f.FilingType, &f.Revenue, &f.FilingDate, &f.SourceLine,
			&f.Images, &f.Pages, &status, &f.Error, &updated); err != nil {
			return nil, fmt.Errorf("scanning filing: %w", err)
		}
		f.Status = types.ConversionStatus(status)
		if t, err := time.Parse(time.RFC3339, updated); err == nil {
			f.UpdatedAt = t
		}
		filings = append(filings, f)
	}
	return filings, rows.Err()
}
