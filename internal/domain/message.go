package domain

import (
	"strings"
	"time"
)

// Roles válidos para un mensaje dentro de una conversación.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message es un turno inmutable dentro de una conversación.
// Una vez persistido no se edita, reordena ni borra individualmente.
type Message struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

// Valid indica si el mensaje tiene rol conocido y texto no vacío.
func (m Message) Valid() bool {
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return false
	}
	return strings.TrimSpace(m.Text) != ""
}
