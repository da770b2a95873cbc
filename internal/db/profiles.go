package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

const profileColumns = `student_id, name, department, roll_number, gpa, backlogs, skills,
	github, linkedin, portfolio, placement_status, created_at`

func scanProfile(row pgx.Row) (*types.StudentProfile, error) {
	var (
		p      types.StudentProfile
		id     uuid.UUID
		skills StringArray
	)
	err := row.Scan(&id, &p.Name, &p.Department, &p.RollNumber, &p.GPA, &p.Backlogs, &skills,
		&p.GitHub, &p.LinkedIn, &p.Portfolio, &p.PlacementStatus, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.StudentID = id.String()
	p.Skills = skills
	return &p, nil
}

func (db *DB) CreateProfile(ctx context.Context, p *types.StudentProfile) error {
	uid, err := parseID(p.StudentID)
	if err != nil {
		return err
	}
	status := p.PlacementStatus
	if status == "" {
		status = types.PlacementNotApplied
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO student_profiles
		 (student_id, name, department, roll_number, gpa, backlogs, skills, github, linkedin, portfolio, placement_status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uid, p.Name, p.Department, p.RollNumber, p.GPA, p.Backlogs, jsonArray(p.Skills),
		p.GitHub, p.LinkedIn, p.Portfolio, string(status), db.stamp(p.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to create profile for %s: %w", p.StudentID, store.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (db *DB) GetProfile(ctx context.Context, studentID string) (*types.StudentProfile, error) {
	uid, err := parseID(studentID)
	if err != nil {
		return nil, err
	}
	p, err := scanProfile(db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM student_profiles WHERE student_id = $1`, uid))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// UpdateProfile applies the non-nil fields of u.
func (db *DB) UpdateProfile(ctx context.Context, studentID string, u store.ProfileUpdate) (bool, error) {
	uid, err := parseID(studentID)
	if err != nil {
		return false, err
	}
	var skills any
	if u.Skills != nil {
		skills = jsonArray(*u.Skills)
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE student_profiles SET
		     name       = COALESCE($2, name),
		     department = COALESCE($3, department),
		     gpa        = COALESCE($4, gpa),
		     backlogs   = COALESCE($5, backlogs),
		     skills     = COALESCE($6::jsonb, skills),
		     github     = COALESCE($7, github),
		     linkedin   = COALESCE($8, linkedin),
		     portfolio  = COALESCE($9, portfolio)
		 WHERE student_id = $1`,
		uid, u.Name, u.Department, u.GPA, u.Backlogs, skills, u.GitHub, u.LinkedIn, u.Portfolio,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update profile: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func profileWhere(f store.ProfileFilter) *where {
	w := &where{}
	if f.MinGPA != nil {
		w.add("gpa >= $%d", *f.MinGPA)
	}
	if f.MaxBacklogs != nil {
		w.add("backlogs <= $%d", *f.MaxBacklogs)
	}
	if f.PlacementStatus != "" {
		w.add("placement_status = $%d", string(f.PlacementStatus))
	}
	return w
}

// ListProfiles lists profiles oldest first.
func (db *DB) ListProfiles(ctx context.Context, f store.ProfileFilter) ([]types.StudentProfile, error) {
	w := profileWhere(f)
	rows, err := db.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM student_profiles`+w.String()+` ORDER BY created_at, student_id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	out := make([]types.StudentProfile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return out, nil
}

func (db *DB) CountProfiles(ctx context.Context, f store.ProfileFilter) (int64, error) {
	w := profileWhere(f)
	var n int64
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM student_profiles`+w.String(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return n, nil
}

func (db *DB) SetPlacementStatus(ctx context.Context, studentID string, from, to types.PlacementStatus) (bool, error) {
	uid, err := parseID(studentID)
	if err != nil {
		return false, err
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE student_profiles SET placement_status = $3 WHERE student_id = $1 AND placement_status = $2`,
		uid, string(from), string(to),
	)
	if err != nil {
		return false, fmt.Errorf("failed to set placement status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (db *DB) CountByDepartment(ctx context.Context) (map[string]int64, error) {
	rows, err := db.pool.Query(ctx, `SELECT department, COUNT(*) FROM student_profiles GROUP BY department`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by department: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			dept string
			n    int64
		)
		if err := rows.Scan(&dept, &n); err != nil {
			return nil, fmt.Errorf("failed to scan department count: %w", err)
		}
		out[dept] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating department counts: %w", err)
	}
	return out, nil
}
