package service

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"twin-llm/internal/domain"
	"twin-llm/internal/llm"
)

// Limites por defecto de la ventana de contexto. El cliente puede mandar
// lo que quiera; el servidor re-ventanea siempre para acotar el prompt.
const (
	DefaultMaxTurns  = 10
	DefaultMaxTokens = 2048
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// countTokens usa cl100k_base; si tiktoken no inicializa cae a una
// heuristica por runas.
func countTokens(text string) int {
	encodingOnce.Do(func() {
		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			encoding = enc
		}
	})
	if encoding != nil {
		return len(encoding.Encode(text, nil, nil))
	}
	n := len([]rune(text)) / 4
	if n == 0 && strings.TrimSpace(text) != "" {
		n = 1
	}
	return n
}

// ContextWindow recorta el historial a una cola acotada por turnos y por
// tokens antes de mandarla al modelo.
type ContextWindow struct {
	MaxTurns  int
	MaxTokens int
}

func NewContextWindow(maxTurns, maxTokens int) ContextWindow {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return ContextWindow{MaxTurns: maxTurns, MaxTokens: maxTokens}
}

// Apply devuelve los ultimos turnos en formato chat-completions, del mas
// viejo al mas nuevo. El rol "twin" se traduce a "assistant".
func (w ContextWindow) Apply(history []domain.Message) []llm.ChatMessage {
	if len(history) > w.MaxTurns {
		history = history[len(history)-w.MaxTurns:]
	}

	// Presupuesto de tokens desde el final: los turnos recientes pesan mas.
	budget := w.MaxTokens
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := countTokens(history[i].Content)
		if cost > budget {
			break
		}
		budget -= cost
		start = i
	}

	out := make([]llm.ChatMessage, 0, len(history)-start)
	for _, msg := range history[start:] {
		role := "user"
		if msg.Role == domain.RoleTwin {
			role = "assistant"
		}
		out = append(out, llm.ChatMessage{Role: role, Content: msg.Content})
	}
	return out
}
