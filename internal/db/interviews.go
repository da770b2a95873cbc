package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

const interviewColumns = `id, student_id, company_id, interview_date, interview_time, mode, created_by, created_at`

func scanInterview(row pgx.Row) (*types.Interview, error) {
	var (
		iv                       types.Interview
		id, studentID, companyID uuid.UUID
		createdBy                *uuid.UUID
	)
	err := row.Scan(&id, &studentID, &companyID, &iv.Date, &iv.Time, &iv.Mode, &createdBy, &iv.CreatedAt)
	if err != nil {
		return nil, err
	}
	iv.ID = id.String()
	iv.StudentID = studentID.String()
	iv.CompanyID = companyID.String()
	iv.CreatedBy = idString(createdBy)
	return &iv, nil
}

func (db *DB) InsertInterview(ctx context.Context, iv *types.Interview) (string, error) {
	studentID, err := parseID(iv.StudentID)
	if err != nil {
		return "", err
	}
	companyID, err := parseID(iv.CompanyID)
	if err != nil {
		return "", err
	}
	createdBy, err := optionalID(iv.CreatedBy)
	if err != nil {
		return "", err
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO interviews (student_id, company_id, interview_date, interview_time, mode, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		studentID, companyID, iv.Date, iv.Time, string(iv.Mode), createdBy, db.stamp(iv.CreatedAt),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert interview: %w", err)
	}
	return id.String(), nil
}

// ListInterviews lists interviews in calendar order.
func (db *DB) ListInterviews(ctx context.Context, f store.InterviewFilter) ([]types.Interview, error) {
	w := &where{}
	if f.StudentID != "" {
		id, err := uuid.Parse(f.StudentID)
		if err != nil {
			return []types.Interview{}, nil
		}
		w.add("student_id = $%d", id)
	}
	if f.CompanyID != "" {
		id, err := uuid.Parse(f.CompanyID)
		if err != nil {
			return []types.Interview{}, nil
		}
		w.add("company_id = $%d", id)
	}
	if f.Scoped {
		ids := scopeIDs(f.CompanyIDs)
		if len(ids) == 0 {
			return []types.Interview{}, nil
		}
		w.add("company_id = ANY($%d)", ids)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+interviewColumns+` FROM interviews`+w.String()+
			` ORDER BY interview_date, interview_time, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	out := make([]types.Interview, 0)
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		out = append(out, *iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interviews: %w", err)
	}
	return out, nil
}
