package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vexara-llm/internal/domain"
	"vexara-llm/internal/llm"
	"vexara-llm/internal/store"
)

// Textos fijos de respuesta cuando el modelo falla. El producto siempre
// contesta algo; el error crudo nunca llega al usuario.
const (
	FallbackSafety  = "I apologize, but I cannot generate a response for that query due to safety policies."
	FallbackGeneric = "Sorry, I'm having trouble processing your request right now. Please try again later."
)

const (
	titleMaxLen      = 30
	titlePlaceholder = "New Chat"
)

var (
	ErrEmptyInstruction    = errors.New("chat: empty instruction")
	ErrMissingConversation = errors.New("chat: missing conversation id")
)

// ChatService orquesta cada intercambio: valida la instrucción, persiste el
// turno del usuario, arma la ventana de contexto, invoca el modelo y persiste
// la respuesta. También expone el manejo de conversaciones (crear, listar,
// borrar todo).
type ChatService struct {
	store      store.HistoryStore
	llmClient  llm.LLMClient
	builder    ContextBuilder
	logger     *zap.Logger
	llmTimeout time.Duration
}

func NewChatService(historyStore store.HistoryStore, llmClient llm.LLMClient, logger *zap.Logger, llmTimeout time.Duration) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if llmTimeout <= 0 {
		llmTimeout = 60 * time.Second
	}
	return &ChatService{
		store:      historyStore,
		llmClient:  llmClient,
		logger:     logger,
		llmTimeout: llmTimeout,
	}
}

// Handle procesa una instrucción contra una conversación y devuelve el texto
// de respuesta del asistente.
//
// El turno del usuario se persiste antes de invocar el modelo: queda grabado
// aunque el modelo falle. El turno del asistente se persiste solo si el
// modelo responde; ante fallo se devuelve un texto fijo de disculpa y la
// conversación queda con el turno del usuario sin responder.
func (s *ChatService) Handle(ctx context.Context, userID, conversationID, instruction string) (string, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return "", ErrEmptyInstruction
	}
	if strings.TrimSpace(conversationID) == "" {
		return "", ErrMissingConversation
	}

	userMsg := domain.Message{
		ID:             uuid.NewString(),
		UserID:         userID,
		ConversationID: conversationID,
		Role:           domain.RoleUser,
		Text:           instruction,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.Append(ctx, userID, conversationID, userMsg); err != nil {
		return "", fmt.Errorf("persist user message: %w", err)
	}

	history, err := s.store.Load(ctx, userID, conversationID)
	if err != nil {
		s.logger.Warn("load history failed, continuing with empty context",
			zap.String("conversation_id", conversationID), zap.Error(err))
		history = []domain.Message{}
	}

	turns := s.builder.Build(history, instruction)

	llmCtx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()
	reply, err := s.llmClient.Chat(llmCtx, turns)
	if err != nil {
		// Fallo del modelo: texto fijo, sin turno de asistente persistido.
		s.logger.Warn("llm call failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
		if errors.Is(err, llm.ErrContentFiltered) {
			return FallbackSafety, nil
		}
		return FallbackGeneric, nil
	}

	assistantMsg := domain.Message{
		ID:             uuid.NewString(),
		UserID:         userID,
		ConversationID: conversationID,
		Role:           domain.RoleAssistant,
		Text:           reply,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.Append(ctx, userID, conversationID, assistantMsg); err != nil {
		return "", fmt.Errorf("persist assistant message: %w", err)
	}

	return reply, nil
}

// StartConversation crea una conversación vacía y reporta si el usuario ya
// tenía conversaciones previas.
func (s *ChatService) StartConversation(ctx context.Context, userID string) (string, bool, error) {
	existing, err := s.store.ListConversations(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("list conversations: %w", err)
	}
	conversationID, err := s.store.CreateConversation(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("create conversation: %w", err)
	}
	return conversationID, len(existing) > 0, nil
}

// ListConversations devuelve las conversaciones del usuario ordenadas por
// actividad reciente, con título derivado del primer mensaje.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	ids, err := s.store.ListConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	summaries := make([]domain.ConversationSummary, 0, len(ids))
	for _, id := range ids {
		messages, err := s.store.Load(ctx, userID, id)
		if err != nil {
			s.logger.Warn("load for title failed",
				zap.String("conversation_id", id), zap.Error(err))
			messages = nil
		}
		summaries = append(summaries, domain.ConversationSummary{
			ID:    id,
			Title: deriveTitle(messages, id),
		})
	}
	return summaries, nil
}

// ListMessages devuelve el historial completo de una conversación del usuario.
func (s *ChatService) ListMessages(ctx context.Context, userID, conversationID string) ([]domain.Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrMissingConversation
	}
	return s.store.Load(ctx, userID, conversationID)
}

// ClearAll borra todas las conversaciones del usuario y devuelve cuántas
// eliminó. Es irreversible.
func (s *ChatService) ClearAll(ctx context.Context, userID string) (int, error) {
	return s.store.ClearAll(ctx, userID)
}

// deriveTitle toma el primer mensaje de usuario con texto, o el primer
// mensaje del asistente si la conversación abre con él, y recorta la primera
// línea a un largo de display acotado.
func deriveTitle(messages []domain.Message, conversationID string) string {
	title := titlePlaceholder
	for _, msg := range messages {
		if msg.Role == domain.RoleUser && strings.TrimSpace(msg.Text) != "" {
			title = truncateFirstLine(msg.Text)
			break
		}
	}
	if title == titlePlaceholder && len(messages) > 0 && messages[0].Role == domain.RoleAssistant {
		title = truncateFirstLine(messages[0].Text)
	}
	if strings.TrimSpace(title) == "" || title == titlePlaceholder {
		short := conversationID
		if len(short) > 8 {
			short = short[:8]
		}
		title = "Chat " + short
	}
	return title
}

func truncateFirstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	runes := []rune(line)
	if len(runes) <= titleMaxLen {
		return line
	}
	return string(runes[:titleMaxLen]) + "..."
}
