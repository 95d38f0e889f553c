package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"octagram/backend/internal/story/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a story repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the story.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Story) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stories (id, user_id, media_url, media_type, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.MediaURL, s.MediaType, s.CreatedAt, s.ExpiresAt)
	return err
}

// GetByID returns the story for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Story, error) {
	var s domain.Story
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, media_url, media_type, created_at, expires_at
		 FROM stories WHERE id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.MediaURL, &s.MediaType, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ListActiveByUser returns the user's unexpired stories, oldest first.
func (r *PostgresRepository) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]domain.Story, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, media_url, media_type, created_at, expires_at
		 FROM stories WHERE user_id = $1 AND expires_at > $2 ORDER BY created_at ASC`,
		userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []domain.Story
	for rows.Next() {
		var s domain.Story
		if err := rows.Scan(&s.ID, &s.UserID, &s.MediaURL, &s.MediaType, &s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, err
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}

// Delete removes the story.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = $1`, id)
	return err
}

// DeleteExpired removes stories past their expiry and returns the count removed.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
