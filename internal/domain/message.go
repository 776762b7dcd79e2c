package domain

import "time"

const (
	RoleUser = "user"
	RoleTwin = "twin"
)

// Message es un turno dentro de una conversacion. El orden lo define
// created_at, no el id.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
