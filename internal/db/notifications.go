package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/campus-placement/internal/types"
)

func scanNotification(row pgx.Row) (*types.Notification, error) {
	var (
		n          types.Notification
		id, userID uuid.UUID
	)
	if err := row.Scan(&id, &userID, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.ID = id.String()
	n.UserID = userID.String()
	return &n, nil
}

func (db *DB) InsertNotification(ctx context.Context, n *types.Notification) (string, error) {
	userID, err := parseID(n.UserID)
	if err != nil {
		return "", err
	}
	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO notifications (user_id, message, type, read, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		userID, n.Message, string(n.Type), n.Read, db.stamp(n.CreatedAt),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert notification: %w", err)
	}
	return id.String(), nil
}

// ListNotifications returns at most limit notifications, newest first. A
// non-positive limit returns all of them.
func (db *DB) ListNotifications(ctx context.Context, userID string, limit int) ([]types.Notification, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return []types.Notification{}, nil
	}
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, message, type, read, created_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		uid, lim,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]types.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return out, nil
}

func (db *DB) CountUnread(ctx context.Context, userID string) (int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return 0, nil
	}
	var n int64
	err = db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, uid,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

// MarkNotificationRead only touches notifications owned by userID.
func (db *DB) MarkNotificationRead(ctx context.Context, id, userID string) (bool, error) {
	nid, err := parseID(id)
	if err != nil {
		return false, err
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, nid, uid)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
