package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vexara-llm/internal/service"
	"vexara-llm/internal/store"
)

// ChatHandler mantiene dependencias para los endpoints de conversaciones.
type ChatHandler struct {
	logger  *zap.Logger
	chatSvc *service.ChatService
}

// NewChatHandler crea una instancia de ChatHandler con sus dependencias.
func NewChatHandler(logger *zap.Logger, chatSvc *service.ChatService) *ChatHandler {
	return &ChatHandler{logger: logger, chatSvc: chatSvc}
}

// Ask maneja POST /ask: una instrucción contra una conversación existente.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req struct {
		ChatID      string `json:"chat_id"`
		Instruction string `json:"instruction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid ask request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	reply, err := h.chatSvc.Handle(c.Request.Context(), currentUserID(c), req.ChatID, req.Instruction)
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}

// StartNewChat maneja POST /chats.
func (h *ChatHandler) StartNewChat(c *gin.Context) {
	chatID, hasPrevious, err := h.chatSvc.StartConversation(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.logger.Error("start conversation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start chat"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"chat_id":            chatID,
		"has_previous_chats": hasPrevious,
	})
}

// ListChats maneja GET /chats.
func (h *ChatHandler) ListChats(c *gin.Context) {
	summaries, err := h.chatSvc.ListConversations(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.logger.Error("list conversations failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list chats"})
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// GetChatMessages maneja GET /chats/:chat_id/messages.
func (h *ChatHandler) GetChatMessages(c *gin.Context) {
	messages, err := h.chatSvc.ListMessages(c.Request.Context(), currentUserID(c), c.Param("chat_id"))
	if err != nil {
		h.writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// ClearAllChats maneja POST /chats/clear.
func (h *ChatHandler) ClearAllChats(c *gin.Context) {
	cleared, err := h.chatSvc.ClearAll(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.logger.Error("clear chats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear chats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

func (h *ChatHandler) writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyInstruction):
		c.JSON(http.StatusBadRequest, gin.H{"error": "please provide a valid input"})
	case errors.Is(err, service.ErrMissingConversation), errors.Is(err, store.ErrInvalidKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat id not provided"})
	default:
		h.logger.Error("chat request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process request"})
	}
}
