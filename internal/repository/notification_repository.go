package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/portal-backend/internal/model"
)

// NotificationRepository handles student notifications.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create inserts a notification using db, which may be a transaction.
func (r *NotificationRepository) Create(ctx context.Context, db DBTX, n *model.Notification) error {
	if db == nil {
		db = r.pool
	}
	return db.QueryRow(ctx,
		`INSERT INTO notifications (student_id, kind, title, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		n.StudentID, n.Kind, n.Title, n.Body,
	).Scan(&n.ID, &n.CreatedAt)
}

// ListPaginated retrieves a student's notifications newest first, with the total
// and unread counts.
func (r *NotificationRepository) ListPaginated(ctx context.Context, studentID, limit, offset int) ([]model.Notification, int, int, error) {
	var total, unread int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE read_at IS NULL)
		 FROM notifications WHERE student_id = $1`, studentID,
	).Scan(&total, &unread); err != nil {
		return nil, 0, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, kind, title, body, read_at, created_at
		 FROM notifications WHERE student_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`, studentID, limit, offset,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	items := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.StudentID, &n.Kind, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, 0, 0, err
		}
		items = append(items, n)
	}
	return items, total, unread, rows.Err()
}

// MarkRead flags one of the student's notifications as read. Idempotent.
func (r *NotificationRepository) MarkRead(ctx context.Context, studentID, id int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		 WHERE id = $1 AND student_id = $2`, id, studentID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
