package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

const actorColumns = `id, name, email, password_hash, role, status, assigned_drives, created_at`

func scanActor(row pgx.Row) (*types.Actor, error) {
	var (
		a      types.Actor
		id     uuid.UUID
		drives StringArray
	)
	if err := row.Scan(&id, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.Status, &drives, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.ID = id.String()
	if len(drives) > 0 {
		a.AssignedDrives = drives
	}
	return &a, nil
}

// CreateActor inserts an actor. Emails are unique case-insensitively.
func (db *DB) CreateActor(ctx context.Context, a *types.Actor) (string, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO actors (name, email, password_hash, role, status, assigned_drives, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		a.Name, a.Email, a.PasswordHash, string(a.Role), string(a.Status), jsonArray(a.AssignedDrives), db.stamp(a.CreatedAt),
	).Scan(&id)
	if isUniqueViolation(err) {
		return "", fmt.Errorf("failed to create actor %s: %w", a.Email, store.ErrDuplicate)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create actor: %w", err)
	}
	return id.String(), nil
}

// GetActor retrieves an actor by ID
func (db *DB) GetActor(ctx context.Context, id string) (*types.Actor, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	a, err := scanActor(db.pool.QueryRow(ctx,
		`SELECT `+actorColumns+` FROM actors WHERE id = $1`, uid))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}
	return a, nil
}

// GetActorByEmail retrieves an actor by email, ignoring case.
func (db *DB) GetActorByEmail(ctx context.Context, email string) (*types.Actor, error) {
	a, err := scanActor(db.pool.QueryRow(ctx,
		`SELECT `+actorColumns+` FROM actors WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get actor by email: %w", err)
	}
	return a, nil
}

func actorWhere(f store.ActorFilter) *where {
	w := &where{}
	if f.Role != "" {
		w.add("role = $%d", string(f.Role))
	}
	if f.Status != "" {
		w.add("status = $%d", string(f.Status))
	}
	return w
}

// ListActors lists actors oldest first.
func (db *DB) ListActors(ctx context.Context, f store.ActorFilter) ([]types.Actor, error) {
	w := actorWhere(f)
	rows, err := db.pool.Query(ctx,
		`SELECT `+actorColumns+` FROM actors`+w.String()+` ORDER BY created_at, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list actors: %w", err)
	}
	defer rows.Close()

	out := make([]types.Actor, 0)
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan actor: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actors: %w", err)
	}
	return out, nil
}

func (db *DB) CountActors(ctx context.Context, f store.ActorFilter) (int64, error) {
	w := actorWhere(f)
	var n int64
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM actors`+w.String(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count actors: %w", err)
	}
	return n, nil
}

func (db *DB) UpdateActorStatus(ctx context.Context, id string, from, to types.AccountStatus) (bool, error) {
	uid, err := parseID(id)
	if err != nil {
		return false, err
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE actors SET status = $3 WHERE id = $1 AND status = $2`,
		uid, string(from), string(to),
	)
	if err != nil {
		return false, fmt.Errorf("failed to update actor status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AssignDrive reports whether the actor exists; an already assigned drive is left as is.
func (db *DB) AssignDrive(ctx context.Context, actorID, driveID string) (bool, error) {
	uid, err := parseID(actorID)
	if err != nil {
		return false, err
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE actors
		 SET assigned_drives = CASE
		     WHEN assigned_drives ? $2 THEN assigned_drives
		     ELSE assigned_drives || jsonb_build_array($2::text)
		 END
		 WHERE id = $1`,
		uid, driveID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to assign drive: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (db *DB) UnassignDrive(ctx context.Context, driveID string) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE actors SET assigned_drives = assigned_drives - $1::text WHERE assigned_drives ? $1`,
		driveID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to unassign drive: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteActor relies on ON DELETE CASCADE to drop the student profile.
func (db *DB) DeleteActor(ctx context.Context, id string) (bool, error) {
	uid, err := parseID(id)
	if err != nil {
		return false, err
	}
	tag, err := db.pool.Exec(ctx, `DELETE FROM actors WHERE id = $1`, uid)
	if err != nil {
		return false, fmt.Errorf("failed to delete actor: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
