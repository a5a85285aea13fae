package domain

// ConversationSummary describe una conversación para el listado del usuario.
type ConversationSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
