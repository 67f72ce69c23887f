package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/coderedlink/coderedlink/internal/model"
)

var (
	// ErrNotFound is returned when no visible (non-deleted) link matches.
	ErrNotFound = errors.New("link not found")
	// ErrDuplicateCode is returned when an insert hits the unique constraint
	// on the code column. The constraint is the authoritative conflict
	// signal under concurrent creation.
	ErrDuplicateCode = errors.New("short code already exists")
)

const schema = `
CREATE TABLE IF NOT EXISTS links (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    target_url TEXT NOT NULL,
    total_clicks INTEGER NOT NULL DEFAULT 0,
    last_clicked_at TIMESTAMP NULL,
    created_at TIMESTAMP NOT NULL,
    deleted_at TIMESTAMP NULL
);
CREATE TABLE IF NOT EXISTS clicks (
    id TEXT PRIMARY KEY,
    link_id TEXT NOT NULL REFERENCES links(id),
    created_at TIMESTAMP NOT NULL,
    ip_address TEXT,
    user_agent TEXT,
    referer TEXT
);
CREATE INDEX IF NOT EXISTS idx_clicks_link_id ON clicks(link_id);
`

// Store persists links and clicks in a relational database. Both sqlite3
// (development, tests) and postgres (production) drivers are supported.
type Store struct {
	db     *sql.DB
	driver string
}

// New opens the database and ensures the schema exists.
func New(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every pooled connection to a :memory: DSN gets its own database, so
	// pin the pool to a single connection there.
	if driver == "sqlite3" && strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, driver: driver}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateLink inserts a new link. A unique-constraint hit on the code column
// is mapped to ErrDuplicateCode.
func (s *Store) CreateLink(ctx context.Context, link *model.Link) error {
	_, err := s.db.ExecContext(ctx, s.bind(`
        INSERT INTO links (id, code, target_url, total_clicks, created_at)
        VALUES (?, ?, ?, 0, ?)`),
		link.ID, link.Code, link.TargetURL, link.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

// GetActiveByCode returns the link for a code, treating soft-deleted rows
// as absent.
func (s *Store) GetActiveByCode(ctx context.Context, code string) (*model.Link, error) {
	row := s.db.QueryRowContext(ctx, s.bind(`
        SELECT id, code, target_url, total_clicks, last_clicked_at, created_at, deleted_at
        FROM links
        WHERE code = ? AND deleted_at IS NULL`),
		code,
	)
	return scanLink(row)
}

// GetActiveByCodeWithClicks returns the link plus its clicks ordered
// oldest-first.
func (s *Store) GetActiveByCodeWithClicks(ctx context.Context, code string) (*model.Link, error) {
	link, err := s.GetActiveByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.bind(`
        SELECT id, link_id, created_at, ip_address, user_agent, referer
        FROM clicks
        WHERE link_id = ?
        ORDER BY created_at ASC`),
		link.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	link.Clicks = []model.Click{}
	for rows.Next() {
		var c model.Click
		var ip, ua, ref sql.NullString
		if err := rows.Scan(&c.ID, &c.LinkID, &c.CreatedAt, &ip, &ua, &ref); err != nil {
			return nil, err
		}
		c.IPAddress = ip.String
		c.UserAgent = ua.String
		c.Referer = ref.String
		link.Clicks = append(link.Clicks, c)
	}
	return link, rows.Err()
}

// CodeInUse reports whether a code is taken. With includeDeleted the check
// spans soft-deleted rows too, permanently reserving their codes.
func (s *Store) CodeInUse(ctx context.Context, code string, includeDeleted bool) (bool, error) {
	query := `SELECT COUNT(1) FROM links WHERE code = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	var n int
	if err := s.db.QueryRowContext(ctx, s.bind(query), code).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListActive returns non-deleted links, newest-created-first. A limit of 0
// disables the cap.
func (s *Store) ListActive(ctx context.Context, limit int) ([]model.Link, error) {
	query := `
        SELECT id, code, target_url, total_clicks, last_clicked_at, created_at, deleted_at
        FROM links
        WHERE deleted_at IS NULL
        ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.bind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []model.Link{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	return links, rows.Err()
}

// SoftDelete marks a link deleted. Already-deleted and unknown codes both
// report ErrNotFound, so a repeated delete is indistinguishable from a miss.
func (s *Store) SoftDelete(ctx context.Context, code string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.bind(`
        UPDATE links SET deleted_at = ?
        WHERE code = ? AND deleted_at IS NULL`),
		at, code,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordClick applies one visit in a single transaction: counter increment,
// last-clicked timestamp, and the click row. Keeping the three writes atomic
// means total_clicks always equals the number of click rows.
func (s *Store) RecordClick(ctx context.Context, click *model.Click) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.bind(`
        UPDATE links SET total_clicks = total_clicks + 1, last_clicked_at = ?
        WHERE id = ? AND deleted_at IS NULL`),
		click.CreatedAt, click.LinkID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx, s.bind(`
        INSERT INTO clicks (id, link_id, created_at, ip_address, user_agent, referer)
        VALUES (?, ?, ?, ?, ?, ?)`),
		click.ID, click.LinkID, click.CreatedAt,
		nullable(click.IPAddress), nullable(click.UserAgent), nullable(click.Referer),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ============================================================
// HELPERS
// ============================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (*model.Link, error) {
	link := &model.Link{}
	var lastClicked, deleted sql.NullTime
	err := row.Scan(
		&link.ID, &link.Code, &link.TargetURL, &link.TotalClicks,
		&lastClicked, &link.CreatedAt, &deleted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastClicked.Valid {
		link.LastClickedAt = &lastClicked.Time
	}
	if deleted.Valid {
		link.DeletedAt = &deleted.Time
	}
	return link, nil
}

// bind rewrites ? placeholders to $1..$n for postgres. Queries are written
// once in sqlite style.
func (s *Store) bind(query string) string {
	if s.driver != "postgres" {
		return query
	}

	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505" // unique_violation
	}

	return false
}
