package repository

import (
	"context"
	"time"

	"agroplan.io/agroplan/internal/domain"
)

const notificationColumns = `id, farmer_id, type, title, message, entity_type, entity_id, read, created_at`

func scanNotification(row interface{ Scan(...any) error }) (domain.Notification, error) {
	var (
		n   domain.Notification
		typ string
	)
	err := row.Scan(&n.ID, &n.FarmerID, &typ, &n.Title, &n.Message, &n.EntityType, &n.EntityID, &n.Read, &n.CreatedAt)
	n.Type = domain.NotificationType(typ)
	return n, err
}

const insertNotification = `
INSERT INTO notifications (farmer_id, type, title, message, entity_type, entity_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + notificationColumns

func (q *Queries) InsertNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	return scanNotification(q.db.QueryRow(ctx, insertNotification, n.FarmerID, string(n.Type),
		n.Title, n.Message, n.EntityType, n.EntityID))
}

const listNotifications = `
SELECT ` + notificationColumns + `
  FROM notifications
 WHERE farmer_id = $1 AND ($2::bool = FALSE OR read = FALSE)
 ORDER BY created_at DESC, id DESC
 LIMIT $3`

// ListNotifications returns the newest notifications of a farmer.
func (q *Queries) ListNotifications(ctx context.Context, farmerID int64, unreadOnly bool, limit int) ([]domain.Notification, error) {
	rows, err := q.db.Query(ctx, listNotifications, farmerID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

const markNotificationRead = `UPDATE notifications SET read = TRUE WHERE id = $1 AND farmer_id = $2`

func (q *Queries) MarkNotificationRead(ctx context.Context, id, farmerID int64) (int64, error) {
	tag, err := q.db.Exec(ctx, markNotificationRead, id, farmerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteReadNotificationsBefore = `DELETE FROM notifications WHERE read AND created_at < $1`

// DeleteReadNotificationsBefore removes read notifications older than cutoff.
func (q *Queries) DeleteReadNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteReadNotificationsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
