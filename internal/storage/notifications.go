package storage

import (
	"context"
	"fmt"

	"aiwealth/internal/core"
)

// InsertNotification writes an unread alert inside the transaction that
// detected the threshold crossing.
func (t *Tx) InsertNotification(ctx context.Context, message, notifType string) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO notifications (message, status, type) VALUES (?, ?, ?)`,
		message, core.NotificationUnread, notifType)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns the newest notifications, optionally
// including already-read ones.
func (s *Store) ListNotifications(ctx context.Context, limit int, includeRead bool) ([]core.Notification, error) {
	query := `SELECT id, message, status, type, created_at FROM notifications`
	if !includeRead {
		query += ` WHERE status = 'unread'`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []core.Notification
	for rows.Next() {
		var (
			n          core.Notification
			createdRaw string
		)
		if err := rows.Scan(&n.ID, &n.Message, &n.Status, &n.Type, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.CreatedAt = parseStoredTime(createdRaw)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flips a notification to read.
func (s *Store) MarkNotificationRead(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET status = 'read' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("notification %d: %w", id, core.ErrNotFound)
	}
	return nil
}
