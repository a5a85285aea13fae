package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"vexara-llm/internal/domain"
)

var rootBucket = []byte("conversations")

// convRecord es el registro durable de una conversación: la secuencia
// ordenada de mensajes más la marca de última actividad para el listado.
type convRecord struct {
	Messages  []domain.Message `json:"messages"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// BoltStore implementa HistoryStore sobre un único archivo bbolt: un bucket
// por usuario, una clave por conversación. Las transacciones Update de bbolt
// tienen un solo escritor, lo que serializa los read-modify-write de Append.
type BoltStore struct {
	db     *bolt.DB
	logger *zap.Logger
}

// OpenBolt abre (o crea) el archivo de historial.
func OpenBolt(path string, logger *zap.Logger) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(rootBucket)
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoltStore{db: db, logger: logger}, nil
}

// Close cierra el archivo subyacente.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Load(_ context.Context, userID, conversationID string) ([]domain.Message, error) {
	userKey, convKey, err := safeKeys(userID, conversationID)
	if err != nil {
		return nil, err
	}

	var messages []domain.Message
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket).Bucket([]byte(userKey))
		if b == nil {
			return nil
		}
		rec, ok := s.decodeRecord(userKey, convKey, b.Get([]byte(convKey)))
		if ok {
			messages = rec.Messages
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

func (s *BoltStore) Append(_ context.Context, userID, conversationID string, msg domain.Message) error {
	userKey, convKey, err := safeKeys(userID, conversationID)
	if err != nil {
		return err
	}
	if !msg.Valid() {
		return ErrInvalidMessage
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, e := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte(userKey))
		if e != nil {
			return e
		}
		rec, ok := s.decodeRecord(userKey, convKey, b.Get([]byte(convKey)))
		if !ok {
			rec = convRecord{CreatedAt: msg.CreatedAt}
		}
		rec.Messages = append(rec.Messages, msg)
		rec.UpdatedAt = msg.CreatedAt
		enc, e := json.Marshal(rec)
		if e != nil {
			return e
		}
		return b.Put([]byte(convKey), enc)
	})
}

func (s *BoltStore) CreateConversation(_ context.Context, userID string) (string, error) {
	userKey := domain.SanitizeID(userID)
	if userKey == "" {
		return "", ErrInvalidKey
	}

	conversationID := uuid.NewString()
	now := time.Now().UTC()
	rec := convRecord{Messages: []domain.Message{}, CreatedAt: now, UpdatedAt: now}
	enc, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b, e := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte(userKey))
		if e != nil {
			return e
		}
		return b.Put([]byte(conversationID), enc)
	})
	if err != nil {
		return "", err
	}
	return conversationID, nil
}

func (s *BoltStore) ListConversations(_ context.Context, userID string) ([]string, error) {
	userKey := domain.SanitizeID(userID)
	if userKey == "" {
		return nil, ErrInvalidKey
	}

	type entry struct {
		id        string
		updatedAt time.Time
	}
	var entries []entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket).Bucket([]byte(userKey))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			rec, ok := s.decodeRecord(userKey, string(k), v)
			if !ok {
				// Registro ilegible: se lista igualmente, con actividad cero.
				entries = append(entries, entry{id: string(k)})
				return nil
			}
			entries = append(entries, entry{id: string(k), updatedAt: rec.UpdatedAt})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].updatedAt.After(entries[j].updatedAt)
	})
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.id)
	}
	return ids, nil
}

func (s *BoltStore) ClearAll(_ context.Context, userID string) (int, error) {
	userKey := domain.SanitizeID(userID)
	if userKey == "" {
		return 0, ErrInvalidKey
	}

	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(rootBucket)
		b := root.Bucket([]byte(userKey))
		if b == nil {
			return nil
		}
		if e := b.ForEach(func(_, _ []byte) error {
			removed++
			return nil
		}); e != nil {
			return e
		}
		return root.DeleteBucket([]byte(userKey))
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// decodeRecord aplica la política de recuperación de lectura: un registro
// ausente o corrupto se trata como historial vacío, nunca como error fatal.
func (s *BoltStore) decodeRecord(userKey, convKey string, raw []byte) (convRecord, bool) {
	if len(raw) == 0 {
		return convRecord{}, false
	}
	var rec convRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Warn("unreadable conversation record, treating as empty",
			zap.String("user_id", userKey),
			zap.String("conversation_id", convKey),
			zap.Error(err),
		)
		return convRecord{}, false
	}
	return rec, true
}
