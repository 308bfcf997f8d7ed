package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
)

// PgxNotificationRepository stores notifications. Read state lives in notification_reads, one
// row per (notification, user), so a broadcast read by one user stays unread for the others.
type PgxNotificationRepository struct {
	BaseRepository
}

func newPgxNotificationRepository(pool *pgxpool.Pool) *PgxNotificationRepository {
	return &PgxNotificationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.NotificationRepository = (*PgxNotificationRepository)(nil)

// visibleTo matches notifications addressed to $1 plus broadcasts.
const visibleTo = `(n.user_id = $1 OR n.user_id IS NULL)`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	if err := row.Scan(
		&n.NotificationID,
		&n.UserID,
		&n.Kind,
		&n.Title,
		&n.Body,
		&n.EntityType,
		&n.EntityID,
		&n.CreatedAt,
		&n.IsRead,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateNotification skips rows that collide on (kind, entity_type, entity_id).
func (r *PgxNotificationRepository) CreateNotification(ctx context.Context, n domain.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (notification_id, user_id, kind, title, body, entity_type, entity_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		n.NotificationID,
		n.UserID,
		n.Kind,
		n.Title,
		n.Body,
		n.EntityType,
		n.EntityID,
		n.CreatedAt,
	)
	if err != nil {
		return false, mapError(err, "failed to create notification")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgxNotificationRepository) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	query := `
		SELECT n.notification_id, n.user_id, n.kind, n.title, n.body, n.entity_type, n.entity_id, n.created_at,
			r.user_id IS NOT NULL AS is_read
		FROM notifications n
		LEFT JOIN notification_reads r ON r.notification_id = n.notification_id AND r.user_id = $1
		WHERE ` + visibleTo + ` AND (NOT $2 OR r.user_id IS NULL)
		ORDER BY n.created_at DESC
		LIMIT $3;
	`
	rows, err := r.db(ctx).Query(ctx, query, userID, unreadOnly, limit)
	if err != nil {
		return nil, mapError(err, "failed to query notifications")
	}
	defer rows.Close()

	notifications := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan notification")
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating notifications")
	}
	return notifications, nil
}

// MarkRead is idempotent; it reports ErrNotFound only when the user cannot see the notification.
func (r *PgxNotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	var visible bool
	err := r.db(ctx).QueryRow(ctx, `
		WITH target AS (
			SELECT n.notification_id FROM notifications n
			WHERE n.notification_id = $2 AND `+visibleTo+`
		), ins AS (
			INSERT INTO notification_reads (notification_id, user_id, read_at)
			SELECT notification_id, $1, now() FROM target
			ON CONFLICT DO NOTHING
		)
		SELECT EXISTS (SELECT 1 FROM target);
	`, userID, notificationID).Scan(&visible)
	if err != nil {
		return mapError(err, "failed to mark notification read")
	}
	if !visible {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db(ctx).Exec(ctx, `
		INSERT INTO notification_reads (notification_id, user_id, read_at)
		SELECT n.notification_id, $1, now()
		FROM notifications n
		WHERE `+visibleTo+`
		ON CONFLICT DO NOTHING;
	`, userID)
	if err != nil {
		return 0, mapError(err, "failed to mark notifications read")
	}
	return tag.RowsAffected(), nil
}
