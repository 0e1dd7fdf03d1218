package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/pkg/apperrors"
)

// NotificationRepository handles the notification inbox
type NotificationRepository struct {
	db DBTX
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts an inbox row
func (r *NotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) (int64, error) {
	sql, args, err := psql.Insert("notifications").
		Columns("recipient_id", "internship_id", "status", "title", "message").
		Values(n.RecipientID, n.InternshipID, n.Status, n.Title, n.Message).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return 0, err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		return 0, storageError("failed to create notification", err)
	}
	return n.ID, nil
}

// ListNotifications returns a user's notifications, newest first
func (r *NotificationRepository) ListNotifications(ctx context.Context, recipientID int64, unreadOnly bool, limit uint64) ([]*models.Notification, error) {
	query := psql.Select("id", "recipient_id", "internship_id", "status", "title", "message", "is_read", "created_at").
		From("notifications").
		Where(squirrel.Eq{"recipient_id": recipientID}).
		OrderBy("created_at DESC", "id DESC")
	if unreadOnly {
		query = query.Where(squirrel.Eq{"is_read": false})
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, storageError("failed to list notifications", err)
	}
	defer rows.Close()

	items := make([]*models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.InternshipID, &n.Status, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, storageError("failed to scan notification", err)
		}
		items = append(items, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to list notifications", err)
	}
	return items, nil
}

// MarkNotificationRead marks one of the recipient's notifications as read
func (r *NotificationRepository) MarkNotificationRead(ctx context.Context, recipientID, notificationID int64) error {
	sql, args, err := psql.Update("notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"id": notificationID, "recipient_id": recipientID}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return storageError("failed to update notification", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("notification not found")
	}
	return nil
}
