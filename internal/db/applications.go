package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

const applicationColumns = `id, student_id, company_id, status, applied_at, updated_at`

func scanApplication(row pgx.Row) (*types.Application, error) {
	var (
		a                        types.Application
		id, studentID, companyID uuid.UUID
	)
	if err := row.Scan(&id, &studentID, &companyID, &a.Status, &a.AppliedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.ID = id.String()
	a.StudentID = studentID.String()
	a.CompanyID = companyID.String()
	return &a, nil
}

// InsertApplication fails with store.ErrDuplicate when the student already
// applied to the drive.
func (db *DB) InsertApplication(ctx context.Context, a *types.Application) (string, error) {
	studentID, err := parseID(a.StudentID)
	if err != nil {
		return "", err
	}
	companyID, err := parseID(a.CompanyID)
	if err != nil {
		return "", err
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO applications (student_id, company_id, status, applied_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		studentID, companyID, string(a.Status), db.stamp(a.AppliedAt), db.stamp(a.UpdatedAt),
	).Scan(&id)
	if isUniqueViolation(err) {
		return "", fmt.Errorf("failed to insert application: %w", store.ErrDuplicate)
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert application: %w", err)
	}
	return id.String(), nil
}

func (db *DB) GetApplication(ctx context.Context, id string) (*types.Application, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, uid))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return a, nil
}

func (db *DB) UpdateApplicationStatus(ctx context.Context, id string, from, to types.ApplicationStatus, at time.Time) (bool, error) {
	uid, err := parseID(id)
	if err != nil {
		return false, err
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE applications SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		uid, string(from), string(to), at,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update application status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// applicationWhere reports false when the filter cannot match any row.
func applicationWhere(f store.ApplicationFilter) (*where, bool) {
	w := &where{}
	if f.StudentID != "" {
		id, err := uuid.Parse(f.StudentID)
		if err != nil {
			return nil, false
		}
		w.add("student_id = $%d", id)
	}
	if f.CompanyID != "" {
		id, err := uuid.Parse(f.CompanyID)
		if err != nil {
			return nil, false
		}
		w.add("company_id = $%d", id)
	}
	if f.Scoped {
		ids := scopeIDs(f.CompanyIDs)
		if len(ids) == 0 {
			return nil, false
		}
		w.add("company_id = ANY($%d)", ids)
	}
	if f.Status != "" {
		w.add("status = $%d", string(f.Status))
	}
	return w, true
}

// ListApplications lists applications newest first.
func (db *DB) ListApplications(ctx context.Context, f store.ApplicationFilter) ([]types.Application, error) {
	w, ok := applicationWhere(f)
	if !ok {
		return []types.Application{}, nil
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications`+w.String()+` ORDER BY applied_at DESC, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	out := make([]types.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}
	return out, nil
}

func (db *DB) CountApplications(ctx context.Context, f store.ApplicationFilter) (int64, error) {
	w, ok := applicationWhere(f)
	if !ok {
		return 0, nil
	}
	var n int64
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM applications`+w.String(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return n, nil
}
