package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/pkg/apperrors"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a single notification
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, community_id, type, content_id, title, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		notification.UserID,
		notification.CommunityID,
		notification.Type,
		notification.ContentID,
		notification.Title,
		notification.Description,
	).Scan(&notification.ID, &notification.CreatedAt)

	if err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}

	return nil
}

// CreateBatch inserts notifications for many recipients in one statement
// and fills in their generated ids and timestamps. All rows land or none
// do, which keeps fan-out all-or-nothing.
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	queryBuilder := squirrel.Insert("notifications").
		Columns("user_id", "community_id", "type", "content_id", "title", "description").
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar)

	for _, n := range notifications {
		queryBuilder = queryBuilder.Values(n.UserID, n.CommunityID, n.Type, n.ContentID, n.Title, n.Description)
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error creating notifications: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(notifications) {
			break
		}
		if err := rows.Scan(&notifications[i].ID, &notifications[i].CreatedAt); err != nil {
			return fmt.Errorf("error scanning notification: %w", err)
		}
		i++
	}

	return rows.Err()
}

// ListUnread retrieves a user's unread notifications, newest first
func (r *NotificationRepository) ListUnread(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, community_id, type, content_id, title, description, read, created_at
		FROM notifications
		WHERE user_id = $1 AND read = FALSE
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.CommunityID,
			&n.Type,
			&n.ContentID,
			&n.Title,
			&n.Description,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// CountUnread returns the number of unread notifications of a user
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`,
		userID,
	).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("error counting notifications: %w", err)
	}

	return count, nil
}

// MarkRead marks one notification of a user as read. Marking an already
// read notification is a no-op.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.db.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if getErr := r.exists(ctx, notificationID, userID); getErr != nil {
			return getErr
		}
	}

	return nil
}

// MarkAllRead marks every unread notification of a user as read and
// returns the ids that flipped.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE user_id = $1 AND read = FALSE
		RETURNING id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error marking notifications read: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning notification id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *NotificationRepository) exists(ctx context.Context, notificationID, userID uuid.UUID) error {
	var id uuid.UUID
	err := r.db.QueryRow(ctx,
		`SELECT id FROM notifications WHERE id = $1 AND user_id = $2`,
		notificationID, userID,
	).Scan(&id)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrResourceNotFound
		}
		return fmt.Errorf("error retrieving notification: %w", err)
	}

	return nil
}
