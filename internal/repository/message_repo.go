package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"ai-tutor/internal/domain"
)

// ErrHelpfulAlreadySet indica que el flag de feedback ya fue fijado antes
// (o que el mensaje no existe); solo se permite una transicion.
var ErrHelpfulAlreadySet = errors.New("helpful flag already set")

type MessageRepository interface {
	// Append agrega al final de la secuencia de la sesion; nunca reordena.
	Append(ctx context.Context, message domain.Message) error
	ListBySessionID(ctx context.Context, sessionID string) ([]domain.Message, error)
	// SetHelpful fija el flag de feedback como maximo una vez por mensaje.
	SetHelpful(ctx context.Context, messageID string, helpful bool) error
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Append(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, session_id, user_id, role, content, metadata, helpful, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var metadata interface{}
	if !message.Metadata.IsEmpty() {
		raw, err := json.Marshal(message.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metadata = raw
	}

	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.SessionID,
		nullIfEmpty(message.UserID),
		string(message.Role),
		message.Content,
		metadata,
		message.Helpful,
		message.CreatedAt,
	)
	return err
}

func (r *PgMessageRepository) ListBySessionID(ctx context.Context, sessionID string) ([]domain.Message, error) {
	const query = `
		SELECT id, session_id, user_id, role, content, metadata, helpful, created_at
		FROM messages
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var userID *string
		var role string
		var rawMetadata []byte

		err = rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&userID,
			&role,
			&msg.Content,
			&rawMetadata,
			&msg.Helpful,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if userID != nil {
			msg.UserID = *userID
		}
		msg.Role = domain.Role(role)
		if len(rawMetadata) > 0 {
			var metadata domain.MessageMetadata
			if err := json.Unmarshal(rawMetadata, &metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
			msg.Metadata = &metadata
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *PgMessageRepository) SetHelpful(ctx context.Context, messageID string, helpful bool) error {
	const query = `
		UPDATE messages
		SET helpful = $2
		WHERE id = $1 AND helpful IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, messageID, helpful)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrHelpfulAlreadySet
	}
	return nil
}
