package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

const driveColumns = `id, company_name, job_role, min_gpa, allowed_backlogs, required_skills,
	drive_date, recruiter_id, created_by, created_at`

func scanDrive(row pgx.Row) (*types.Drive, error) {
	var (
		d                      types.Drive
		id                     uuid.UUID
		recruiterID, createdBy *uuid.UUID
		skills                 StringArray
	)
	err := row.Scan(&id, &d.CompanyName, &d.JobRole, &d.MinGPA, &d.AllowedBacklogs, &skills,
		&d.DriveDate, &recruiterID, &createdBy, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.ID = id.String()
	d.RequiredSkills = skills
	d.RecruiterID = idString(recruiterID)
	d.CreatedBy = idString(createdBy)
	return &d, nil
}

func (db *DB) CreateDrive(ctx context.Context, d *types.Drive) (string, error) {
	recruiterID, err := optionalID(d.RecruiterID)
	if err != nil {
		return "", err
	}
	createdBy, err := optionalID(d.CreatedBy)
	if err != nil {
		return "", err
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO drives
		 (company_name, job_role, min_gpa, allowed_backlogs, required_skills, drive_date, recruiter_id, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		d.CompanyName, d.JobRole, d.MinGPA, d.AllowedBacklogs, jsonArray(d.RequiredSkills),
		d.DriveDate, recruiterID, createdBy, db.stamp(d.CreatedAt),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create drive: %w", err)
	}
	return id.String(), nil
}

func (db *DB) GetDrive(ctx context.Context, id string) (*types.Drive, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	d, err := scanDrive(db.pool.QueryRow(ctx, `SELECT `+driveColumns+` FROM drives WHERE id = $1`, uid))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get drive: %w", err)
	}
	return d, nil
}

// UpdateDrive applies the non-nil fields of u.
func (db *DB) UpdateDrive(ctx context.Context, id string, u store.DriveUpdate) (bool, error) {
	uid, err := parseID(id)
	if err != nil {
		return false, err
	}
	var skills any
	if u.RequiredSkills != nil {
		skills = jsonArray(*u.RequiredSkills)
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE drives SET
		     company_name     = COALESCE($2, company_name),
		     job_role         = COALESCE($3, job_role),
		     min_gpa          = COALESCE($4, min_gpa),
		     allowed_backlogs = COALESCE($5, allowed_backlogs),
		     required_skills  = COALESCE($6::jsonb, required_skills),
		     drive_date       = COALESCE($7, drive_date)
		 WHERE id = $1`,
		uid, u.CompanyName, u.JobRole, u.MinGPA, u.AllowedBacklogs, skills, u.DriveDate,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update drive: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (db *DB) DeleteDrive(ctx context.Context, id string) (bool, error) {
	uid, err := parseID(id)
	if err != nil {
		return false, err
	}
	tag, err := db.pool.Exec(ctx, `DELETE FROM drives WHERE id = $1`, uid)
	if err != nil {
		return false, fmt.Errorf("failed to delete drive: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (db *DB) SetDriveRecruiter(ctx context.Context, driveID, recruiterID string) (bool, error) {
	uid, err := parseID(driveID)
	if err != nil {
		return false, err
	}
	rid, err := optionalID(recruiterID)
	if err != nil {
		return false, err
	}
	tag, err := db.pool.Exec(ctx, `UPDATE drives SET recruiter_id = $2 WHERE id = $1`, uid, rid)
	if err != nil {
		return false, fmt.Errorf("failed to set drive recruiter: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListDrives lists drives newest first.
func (db *DB) ListDrives(ctx context.Context, f store.DriveFilter) ([]types.Drive, error) {
	w := &where{}
	if f.Scoped {
		ids := scopeIDs(f.IDs)
		if len(ids) == 0 {
			return []types.Drive{}, nil
		}
		w.add("id = ANY($%d)", ids)
	}
	if f.EligibleGPA != nil {
		w.add("min_gpa <= $%d", *f.EligibleGPA)
	}
	if f.EligibleBacklogs != nil {
		w.add("allowed_backlogs >= $%d", *f.EligibleBacklogs)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+driveColumns+` FROM drives`+w.String()+` ORDER BY created_at DESC, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list drives: %w", err)
	}
	defer rows.Close()

	out := make([]types.Drive, 0)
	for rows.Next() {
		d, err := scanDrive(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan drive: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drives: %w", err)
	}
	return out, nil
}

func (db *DB) CountDrives(ctx context.Context) (int64, error) {
	var n int64
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM drives`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count drives: %w", err)
	}
	return n, nil
}
