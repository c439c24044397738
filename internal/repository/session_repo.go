package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ai-tutor/internal/domain"
)

type SessionRepository interface {
	// CreateIfAbsent es idempotente: si la sesion ya existe no hace nada.
	CreateIfAbsent(ctx context.Context, session domain.Session) error
	GetByID(ctx context.Context, id string) (domain.Session, error)
	ListByUserID(ctx context.Context, userID string) ([]domain.Session, error)
	// UpdateSummary actualiza metadata heuristica; campos nil no se tocan.
	UpdateSummary(ctx context.Context, id string, summary domain.SessionSummary) error
	// Delete elimina la sesion y todos sus mensajes atomicamente.
	Delete(ctx context.Context, id string) error
}

type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

func (r *PgSessionRepository) CreateIfAbsent(ctx context.Context, session domain.Session) error {
	const query = `
		INSERT INTO sessions (id, user_id, title, last_message_preview, topic, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		session.ID,
		nullIfEmpty(session.UserID),
		session.Title,
		session.LastMessagePreview,
		session.Topic,
		session.CreatedAt,
		session.UpdatedAt,
	)
	return err
}

func (r *PgSessionRepository) GetByID(ctx context.Context, id string) (domain.Session, error) {
	const query = `
		SELECT id, user_id, title, last_message_preview, topic, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`
	var session domain.Session
	var userID *string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&userID,
		&session.Title,
		&session.LastMessagePreview,
		&session.Topic,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, err
	}
	if userID != nil {
		session.UserID = *userID
	}
	return session, err
}

func (r *PgSessionRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Session, error) {
	const query = `
		SELECT id, user_id, title, last_message_preview, topic, created_at, updated_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var session domain.Session
		var uid *string
		if err := rows.Scan(
			&session.ID,
			&uid,
			&session.Title,
			&session.LastMessagePreview,
			&session.Topic,
			&session.CreatedAt,
			&session.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if uid != nil {
			session.UserID = *uid
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *PgSessionRepository) UpdateSummary(ctx context.Context, id string, summary domain.SessionSummary) error {
	const query = `
		UPDATE sessions
		SET title = COALESCE($2, title),
		    last_message_preview = COALESCE($3, last_message_preview),
		    topic = COALESCE($4, topic),
		    updated_at = $5
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		id,
		summary.Title,
		summary.LastMessagePreview,
		summary.Topic,
		time.Now().UTC(),
	)
	return err
}

func (r *PgSessionRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE session_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
