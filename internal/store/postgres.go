package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vexara-llm/internal/domain"
)

// PgStore implementa HistoryStore sobre Postgres: una fila por mensaje y una
// fila por conversación. El candado por clave lo da `SELECT ... FOR UPDATE`
// sobre la fila de la conversación dentro de la transacción de Append.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureSchema crea las tablas si no existen.
func (s *PgStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS conversations (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS conversations_user_idx
			ON conversations (user_id, updated_at DESC);
		CREATE TABLE IF NOT EXISTS messages (
			seq             BIGSERIAL PRIMARY KEY,
			id              TEXT NOT NULL,
			user_id         TEXT NOT NULL,
			conversation_id TEXT NOT NULL,
			role            TEXT NOT NULL,
			text            TEXT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS messages_conv_idx
			ON messages (user_id, conversation_id, seq);
	`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

func (s *PgStore) Load(ctx context.Context, userID, conversationID string) ([]domain.Message, error) {
	userKey, convKey, err := safeKeys(userID, conversationID)
	if err != nil {
		return nil, err
	}

	const query = `
		SELECT id, role, text, created_at
		FROM messages
		WHERE user_id = $1 AND conversation_id = $2
		ORDER BY seq ASC
	`
	rows, err := s.pool.Query(ctx, query, userKey, convKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		msg := domain.Message{UserID: userKey, ConversationID: convKey}
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *PgStore) Append(ctx context.Context, userID, conversationID string, msg domain.Message) error {
	userKey, convKey, err := safeKeys(userID, conversationID)
	if err != nil {
		return err
	}
	if !msg.Valid() {
		return ErrInvalidMessage
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Serializa appends concurrentes sobre la misma conversación.
	var existing string
	err = tx.QueryRow(ctx,
		`SELECT id FROM conversations WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		convKey, userKey,
	).Scan(&existing)
	if err == pgx.ErrNoRows {
		_, err = tx.Exec(ctx,
			`INSERT INTO conversations (id, user_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $3)`,
			convKey, userKey, msg.CreatedAt,
		)
	}
	if err != nil {
		return fmt.Errorf("lock conversation: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO messages (id, user_id, conversation_id, role, text, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, userKey, convKey, msg.Role, msg.Text, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE conversations SET updated_at = $3 WHERE id = $1 AND user_id = $2`,
		convKey, userKey, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PgStore) CreateConversation(ctx context.Context, userID string) (string, error) {
	userKey := domain.SanitizeID(userID)
	if userKey == "" {
		return "", ErrInvalidKey
	}

	conversationID := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversations (id, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)`,
		conversationID, userKey, now,
	)
	if err != nil {
		return "", err
	}
	return conversationID, nil
}

func (s *PgStore) ListConversations(ctx context.Context, userID string) ([]string, error) {
	userKey := domain.SanitizeID(userID)
	if userKey == "" {
		return nil, ErrInvalidKey
	}

	const query = `
		SELECT id FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC, id
	`
	rows, err := s.pool.Query(ctx, query, userKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PgStore) ClearAll(ctx context.Context, userID string) (int, error) {
	userKey := domain.SanitizeID(userID)
	if userKey == "" {
		return 0, ErrInvalidKey
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE user_id = $1`, userKey); err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM conversations WHERE user_id = $1`, userKey)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
