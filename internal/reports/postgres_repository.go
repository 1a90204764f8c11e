package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reportlens/reportlens/internal/analysis"
)

// DB is the subset of pgxpool.Pool used by PostgresRepository, so tests can
// substitute pgxmock.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores reports in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("reports: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB initializes a repo over any DB implementation.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the report and its results in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, report *Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("reports: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var createdAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO reports (id, user_id, filename, file_type, file_url, patient_name, patient_age, patient_gender)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`,
		report.ID,
		report.UserID,
		report.Filename,
		report.FileType,
		report.FileURL,
		report.Patient.Name,
		report.Patient.Age,
		report.Patient.Gender,
	).Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("reports: insert report: %w", err)
	}
	report.CreatedAt = createdAt

	for i, res := range report.Results {
		_, err = tx.Exec(ctx, `
			INSERT INTO test_results (report_id, position, test_name, value, numeric_value, unit, reference_range, interpretation, explanation, degraded, observed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			report.ID,
			i,
			res.TestName,
			res.Value,
			res.NumericValue,
			res.Unit,
			res.ReferenceRange,
			string(res.Interpretation),
			res.Explanation,
			res.Degraded,
			res.ObservedAt,
		)
		if err != nil {
			return fmt.Errorf("reports: insert result %q: %w", res.TestName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("reports: commit: %w", err)
	}
	return nil
}

// ListByUser returns the user's reports newest-first with nested results.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Report, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, filename, file_type, file_url, patient_name, patient_age, patient_gender, created_at
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("reports: list: %w", err)
	}
	defer rows.Close()

	var out []Report
	var ids []string
	index := map[string]int{}
	for rows.Next() {
		var rep Report
		if err := rows.Scan(
			&rep.ID,
			&rep.UserID,
			&rep.Filename,
			&rep.FileType,
			&rep.FileURL,
			&rep.Patient.Name,
			&rep.Patient.Age,
			&rep.Patient.Gender,
			&rep.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("reports: scan report: %w", err)
		}
		index[rep.ID] = len(out)
		ids = append(ids, rep.ID)
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: list rows: %w", err)
	}
	if len(out) == 0 {
		return []Report{}, nil
	}

	resRows, err := r.db.Query(ctx, `
		SELECT report_id, test_name, value, numeric_value, unit, reference_range, interpretation, explanation, degraded, observed_at
		FROM test_results
		WHERE report_id = ANY($1::uuid[])
		ORDER BY report_id, position
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("reports: list results: %w", err)
	}
	defer resRows.Close()

	for resRows.Next() {
		var reportID string
		res, err := scanResult(resRows, &reportID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[reportID]; ok {
			out[i].Results = append(out[i].Results, res)
		}
	}
	if err := resRows.Err(); err != nil {
		return nil, fmt.Errorf("reports: result rows: %w", err)
	}
	return out, nil
}

// GetByID fetches a report scoped to the user, with results.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*Report, error) {
	var rep Report
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, filename, file_type, file_url, patient_name, patient_age, patient_gender, created_at
		FROM reports
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&rep.ID,
		&rep.UserID,
		&rep.Filename,
		&rep.FileType,
		&rep.FileURL,
		&rep.Patient.Name,
		&rep.Patient.Age,
		&rep.Patient.Gender,
		&rep.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("reports: get: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT report_id, test_name, value, numeric_value, unit, reference_range, interpretation, explanation, degraded, observed_at
		FROM test_results
		WHERE report_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("reports: get results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reportID string
		res, err := scanResult(rows, &reportID)
		if err != nil {
			return nil, err
		}
		rep.Results = append(rep.Results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: result rows: %w", err)
	}
	return &rep, nil
}

// Delete removes the report; test_results cascade via foreign key.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reports WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("reports: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// Stats computes dashboard counts in the database.
func (r *PostgresRepository) Stats(ctx context.Context, userID string) (*UserStats, error) {
	stats := &UserStats{}

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE((SELECT COUNT(*) FROM test_results tr JOIN reports rp ON tr.report_id = rp.id WHERE rp.user_id = $1), 0)
		FROM reports
		WHERE user_id = $1
	`, userID).Scan(&stats.TotalReports, &stats.TotalTests)
	if err != nil {
		return nil, fmt.Errorf("reports: stats counts: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT tr.interpretation
		FROM test_results tr
		JOIN reports rp ON tr.report_id = rp.id
		WHERE rp.user_id = $1
		ORDER BY rp.created_at DESC, tr.position
		LIMIT $2
	`, userID, recentStatsWindow)
	if err != nil {
		return nil, fmt.Errorf("reports: stats recent: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var interp string
		if err := rows.Scan(&interp); err != nil {
			return nil, fmt.Errorf("reports: scan interpretation: %w", err)
		}
		switch analysis.Interpretation(interp) {
		case analysis.InterpretationHigh:
			stats.RecentHigh++
		case analysis.InterpretationNormal:
			stats.RecentNormal++
		case analysis.InterpretationLow:
			stats.RecentLow++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: stats rows: %w", err)
	}
	return stats, nil
}

// scanResult reads one test_results row. reportID receives the owning report.
func scanResult(rows pgx.Rows, reportID *string) (analysis.InterpretedTestResult, error) {
	var res analysis.InterpretedTestResult
	var interp string
	if err := rows.Scan(
		reportID,
		&res.TestName,
		&res.Value,
		&res.NumericValue,
		&res.Unit,
		&res.ReferenceRange,
		&interp,
		&res.Explanation,
		&res.Degraded,
		&res.ObservedAt,
	); err != nil {
		return res, fmt.Errorf("reports: scan result: %w", err)
	}
	res.Interpretation = analysis.Interpretation(interp)
	return res, nil
}
