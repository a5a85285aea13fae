package store

import (
	"context"
	"errors"

	"vexara-llm/internal/domain"
)

var (
	// ErrInvalidKey indica un userID o conversationID que no sobrevive la
	// sanitización y no puede usarse como clave de almacenamiento.
	ErrInvalidKey = errors.New("store: invalid key")

	// ErrInvalidMessage indica un mensaje sin rol conocido o sin texto.
	ErrInvalidMessage = errors.New("store: invalid message")
)

// HistoryStore persiste el historial de mensajes por (usuario, conversación).
//
// Garantías del contrato:
//   - Load devuelve secuencia vacía si no hay registro previo (no es error);
//     un registro corrupto se degrada a historial vacío.
//   - Append es durable antes de retornar y atómico por mensaje; appends
//     concurrentes sobre la misma conversación no pierden mensajes ni
//     reordenan los ya persistidos.
//   - ListConversations ordena por actividad más reciente, descendente.
//   - ClearAll borra todo lo del usuario y devuelve cuántas conversaciones
//     eliminó; es irreversible.
type HistoryStore interface {
	Load(ctx context.Context, userID, conversationID string) ([]domain.Message, error)
	Append(ctx context.Context, userID, conversationID string, msg domain.Message) error
	CreateConversation(ctx context.Context, userID string) (string, error)
	ListConversations(ctx context.Context, userID string) ([]string, error)
	ClearAll(ctx context.Context, userID string) (int, error)
}

// safeKeys sanitiza las claves de acceso; evita que un identificador
// manipulado direccione registros de otro usuario.
func safeKeys(userID, conversationID string) (string, string, error) {
	u := domain.SanitizeID(userID)
	c := domain.SanitizeID(conversationID)
	if u == "" || c == "" {
		return "", "", ErrInvalidKey
	}
	return u, c, nil
}
