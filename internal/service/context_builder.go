package service

import (
	"vexara-llm/internal/domain"
	"vexara-llm/internal/llm"
)

// Preámbulo fijo que establece la persona del asistente. Va siempre al
// inicio de la ventana de contexto, antes del historial.
const (
	systemPreamble = "You are Vexara, a smart and friendly AI assistant for general chat. " +
		"Respond in a helpful and clear way, like a human who cares about helping. " +
		"Use Markdown for formatting your responses. Keep replies concise unless more detail is requested."
	preambleGreeting = "Hello! How can I assist you today?"
)

// ContextBuilder arma la ventana de contexto para una llamada al modelo:
// preámbulo fijo, historial completo en orden de inserción, y la instrucción
// nueva como turno final de usuario.
//
// Es determinista: mismo historial y misma instrucción producen la misma
// secuencia. No trunca ni resume; el límite de contexto del modelo es una
// restricción externa.
type ContextBuilder struct{}

// Build devuelve la secuencia ordenada de turnos para el modelo.
func (ContextBuilder) Build(history []domain.Message, instruction string) []llm.Turn {
	turns := make([]llm.Turn, 0, len(history)+3)
	turns = append(turns,
		llm.Turn{Role: "system", Content: systemPreamble},
		llm.Turn{Role: "assistant", Content: preambleGreeting},
	)

	for _, msg := range history {
		role := "user"
		if msg.Role == domain.RoleAssistant {
			role = "assistant"
		}
		turns = append(turns, llm.Turn{Role: role, Content: msg.Text})
	}

	turns = append(turns, llm.Turn{Role: "user", Content: instruction})
	return turns
}
