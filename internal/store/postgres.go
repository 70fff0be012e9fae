package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/roi-ledger/internal/database"
	"github.com/yourusername/roi-ledger/internal/models"
	"github.com/yourusername/roi-ledger/internal/normalize"
)

const (
	reportSelectSQL = `SELECT id, slug, label, report_date::text, scope, total_wagered::float8, total_return::float8,
		net_profit::float8, roi_percent::float8, hit_rate::float8, summary, source_pdf, created_at, updated_at
		FROM reports`
	betSelectSQL = `SELECT id, report_id, title, description, stake::float8, odds, decimal_odds::float8,
		event_date::text, status, result_notes, category, created_at, updated_at
		FROM bets`
)

// PostgresStore implements Store directly on Postgres
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a store on an open connection pool
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ListReports returns every report, newest report date first
func (s *PostgresStore) ListReports(ctx context.Context) (reports []models.ReportRecord, err error) {
	defer func(start time.Time) { observe("list_reports", start, err) }(time.Now())

	rows, err := s.db.GetPool().Query(ctx, reportSelectSQL+` ORDER BY report_date DESC NULLS LAST, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports = []models.ReportRecord{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// ListPendingBets returns pending bets, earliest event first
func (s *PostgresStore) ListPendingBets(ctx context.Context) ([]models.BetRecord, error) {
	return s.queryBets(ctx, "list_pending_bets",
		betSelectSQL+` WHERE status = $1 ORDER BY event_date ASC NULLS LAST, created_at ASC`,
		string(models.BetStatusPending))
}

// ListRecentResults returns the most recently graded bets
func (s *PostgresStore) ListRecentResults(ctx context.Context, limit int) ([]models.BetRecord, error) {
	return s.queryBets(ctx, "list_recent_results",
		betSelectSQL+` WHERE status <> $1 ORDER BY updated_at DESC LIMIT $2`,
		string(models.BetStatusPending), limit)
}

// ListBets returns all bets, or those in statuses, most recently updated first
func (s *PostgresStore) ListBets(ctx context.Context, statuses ...models.BetStatus) ([]models.BetRecord, error) {
	if len(statuses) == 0 {
		return s.queryBets(ctx, "list_bets", betSelectSQL+` ORDER BY updated_at DESC`)
	}
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return s.queryBets(ctx, "list_bets", betSelectSQL+` WHERE status::text = ANY($1) ORDER BY updated_at DESC`, names)
}

func (s *PostgresStore) queryBets(ctx context.Context, op, query string, args ...interface{}) (bets []models.BetRecord, err error) {
	defer func(start time.Time) { observe(op, start, err) }(time.Now())

	rows, err := s.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	bets = []models.BetRecord{}
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

// CreateBet inserts one bet and returns the stored row
func (s *PostgresStore) CreateBet(ctx context.Context, fields models.BetFields) (bet models.BetRecord, err error) {
	defer func(start time.Time) { observe("create_bet", start, err) }(time.Now())

	names, args := sortedColumns(fields.Columns())
	placeholders := make([]string, len(names))
	for i := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO bets (%s) VALUES (%s) RETURNING id`,
		strings.Join(names, ", "), strings.Join(placeholders, ", "))

	var id int64
	if err := s.db.GetPool().QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return models.BetRecord{}, fmt.Errorf("failed to create bet: %w", err)
	}

	bet, err = scanBet(s.db.GetPool().QueryRow(ctx, betSelectSQL+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.BetRecord{}, models.ErrNotFound
	}
	return bet, err
}

// UpdateBet applies a partial update to one bet
func (s *PostgresStore) UpdateBet(ctx context.Context, id int64, fields models.BetFields) (err error) {
	defer func(start time.Time) { observe("update_bet", start, err) }(time.Now())
	return s.update(ctx, "bets", id, fields.Columns())
}

// UpsertReport merges the draft into the row with the same slug
func (s *PostgresStore) UpsertReport(ctx context.Context, draft models.ReportDraft) (report models.ReportRecord, err error) {
	defer func(start time.Time) { observe("upsert_report", start, err) }(time.Now())

	names, args := sortedColumns(reportColumns(draft))
	placeholders := make([]string, len(names))
	updates := make([]string, 0, len(names))
	for i, name := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if name != "slug" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", name, name))
		}
	}
	updates = append(updates, "updated_at = now()")

	query := fmt.Sprintf(`INSERT INTO reports (%s) VALUES (%s)
		ON CONFLICT (slug) DO UPDATE SET %s RETURNING id`,
		strings.Join(names, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "))

	err = s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return models.ErrNotPersisted
			}
			return fmt.Errorf("failed to upsert report: %w", err)
		}

		var scanErr error
		report, scanErr = scanReport(tx.QueryRow(ctx, reportSelectSQL+` WHERE id = $1`, id))
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return models.ErrNotPersisted
		}
		return scanErr
	})
	if err != nil {
		return models.ReportRecord{}, err
	}
	return report, nil
}

// CreateUpload inserts an upload audit row
func (s *PostgresStore) CreateUpload(ctx context.Context, upload models.UploadRecord) (created models.UploadRecord, err error) {
	defer func(start time.Time) { observe("create_upload", start, err) }(time.Now())

	created = upload
	err = s.db.GetPool().QueryRow(ctx,
		`INSERT INTO uploads (type, filename, status) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		string(upload.Type), upload.Filename, string(upload.Status),
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return models.UploadRecord{}, fmt.Errorf("failed to create upload: %w", err)
	}
	return created, nil
}

// UpdateUpload changes the status of an upload
func (s *PostgresStore) UpdateUpload(ctx context.Context, id int64, update models.UploadUpdate) (err error) {
	defer func(start time.Time) { observe("update_upload", start, err) }(time.Now())
	return s.update(ctx, "uploads", id, update.Columns())
}

// Ping verifies database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) update(ctx context.Context, table string, id int64, cols map[string]interface{}) error {
	if len(cols) == 0 {
		return nil
	}
	names, args := sortedColumns(cols)
	sets := make([]string, len(names))
	for i, name := range names {
		sets[i] = fmt.Sprintf("%s = $%d", name, i+1)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE %s SET %s, updated_at = now() WHERE id = $%d`,
		table, strings.Join(sets, ", "), len(args))

	tag, err := s.db.GetPool().Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s %d: %w", table, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s %d: %w", table, id, models.ErrNotFound)
	}
	return nil
}

// sortedColumns returns column names in a stable order with matching values
func sortedColumns(cols map[string]interface{}) ([]string, []interface{}) {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]interface{}, len(names))
	for i, name := range names {
		args[i] = cols[name]
	}
	return names, args
}

func scanReport(row pgx.Row) (models.ReportRecord, error) {
	var r models.ReportRecord
	err := row.Scan(
		&r.ID, &r.Slug, &r.Label, &r.ReportDate, &r.Scope, &r.TotalWagered, &r.TotalReturn,
		&r.NetProfit, &r.ROIPercent, &r.HitRate, &r.Summary, &r.SourcePDF, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return models.ReportRecord{}, fmt.Errorf("failed to scan report: %w", err)
	}
	r.TotalWagered = normalize.Round2(r.TotalWagered)
	r.TotalReturn = normalize.Round2(r.TotalReturn)
	r.NetProfit = normalize.Round2(r.NetProfit)
	r.ROIPercent = normalize.Round2(r.ROIPercent)
	r.HitRate = normalize.Round2(r.HitRate)
	return r, nil
}

func scanBet(row pgx.Row) (models.BetRecord, error) {
	var b models.BetRecord
	var status string
	err := row.Scan(
		&b.ID, &b.ReportID, &b.Title, &b.Description, &b.Stake, &b.Odds, &b.DecimalOdds,
		&b.EventDate, &status, &b.ResultNotes, &b.Category, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return models.BetRecord{}, fmt.Errorf("failed to scan bet: %w", err)
	}
	b.Status = models.BetStatus(status)
	b.Stake = normalize.Round2(b.Stake)
	b.DecimalOdds = normalize.RoundDecimal(b.DecimalOdds, 3)
	return b, nil
}
