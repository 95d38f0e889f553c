package repository

import (
	"context"
	"database/sql"
	"errors"

	"octagram/backend/internal/notification/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a notification repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the notification. TargetID is stored as NULL when empty.
func (r *PostgresRepository) Create(ctx context.Context, n *domain.Notification) error {
	target := sql.NullString{String: n.TargetID, Valid: n.TargetID != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, recipient_id, sender_id, type, target_id, is_read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.RecipientID, n.SenderID, string(n.Type), target, n.IsRead, n.CreatedAt)
	return err
}

// GetByID returns the notification for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, recipient_id, sender_id, type, target_id, is_read, created_at
		 FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

// ListByRecipient returns up to limit of the recipient's notifications, newest first.
func (r *PostgresRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, recipient_id, sender_id, type, target_id, is_read, created_at
		 FROM notifications WHERE recipient_id = $1
		 ORDER BY created_at DESC LIMIT $2`, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// MarkRead flags the notification as read. No-op when it does not exist.
func (r *PostgresRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	return err
}

// MarkAllRead flags every unread notification for the recipient as read and
// returns the number of rows changed.
func (r *PostgresRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND NOT is_read`, recipientID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanNotification(scan func(dest ...interface{}) error) (*domain.Notification, error) {
	var n domain.Notification
	var typ string
	var target sql.NullString
	if err := scan(&n.ID, &n.RecipientID, &n.SenderID, &typ, &target, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Type = domain.Type(typ)
	n.TargetID = target.String
	return &n, nil
}
