package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"ai-tutor/internal/domain"
)

type MemoryRepository interface {
	Create(ctx context.Context, memory domain.EpisodicMemory) error
	// Search recupera los k recuerdos mas cercanos por similitud coseno.
	Search(ctx context.Context, userID string, queryEmbedding pgvector.Vector, k int) ([]domain.EpisodicMemory, error)
	ListBySessionID(ctx context.Context, sessionID string) ([]domain.EpisodicMemory, error)
}

type PgMemoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgMemoryRepository(pool *pgxpool.Pool) *PgMemoryRepository {
	return &PgMemoryRepository{pool: pool}
}

func (r *PgMemoryRepository) Create(ctx context.Context, memory domain.EpisodicMemory) error {
	importance := memory.Importance
	if importance == "" {
		importance = domain.ImportanceMedium
	}
	const query = `
		INSERT INTO learning_memories (id, user_id, session_id, content, topic, importance, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		memory.ID,
		memory.UserID,
		nullIfEmpty(memory.SessionID),
		memory.Content,
		memory.Topic,
		string(importance),
		memory.Embedding,
		memory.CreatedAt,
	)
	return err
}

func (r *PgMemoryRepository) Search(ctx context.Context, userID string, queryEmbedding pgvector.Vector, k int) ([]domain.EpisodicMemory, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT id, user_id, session_id, content, topic, importance, embedding, created_at
		FROM learning_memories
		WHERE user_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userID, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

func (r *PgMemoryRepository) ListBySessionID(ctx context.Context, sessionID string) ([]domain.EpisodicMemory, error) {
	const query = `
		SELECT id, user_id, session_id, content, topic, importance, embedding, created_at
		FROM learning_memories
		WHERE session_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

func scanMemories(rows pgxRows) ([]domain.EpisodicMemory, error) {
	var memories []domain.EpisodicMemory
	for rows.Next() {
		var m domain.EpisodicMemory
		var sessionID *string
		var importance string
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&sessionID,
			&m.Content,
			&m.Topic,
			&importance,
			&m.Embedding,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		if sessionID != nil {
			m.SessionID = *sessionID
		}
		m.Importance = domain.Importance(importance)
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return memories, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
