package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"twin-llm/internal/domain"
	"twin-llm/internal/llm"
	"twin-llm/internal/repository"
)

// ErrRateLimited indica demasiados turnos seguidos del mismo usuario.
var ErrRateLimited = errors.New("rate limited")

// PastTurn es un turno historico aportado por el cliente. Solo se usa
// cuando la conversacion es nueva y no hay historial persistido; aun asi
// pasa por la misma ventana acotada.
type PastTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatInput es la entrada del Completion Relay.
type ChatInput struct {
	UserID         string
	Message        string
	AvatarID       string
	ConversationID string
	PastMessages   []PastTurn
	Settings       ChatSettings
}

// ChatResult es la salida hacia el cliente.
type ChatResult struct {
	Message        string    `json:"message"`
	ConversationID string    `json:"conversation_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// ChatService orquesta un turno de conversacion: valida, condiciona el
// prompt con el avatar, llama al LLM y persiste ambos mensajes.
type ChatService struct {
	llmClient     llm.ChatClient
	avatars       repository.AvatarRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	window        ContextWindow
	promptBuilder TwinPromptBuilder
	limiter       TurnRateLimiter

	// Un mutex por conversacion: dos turnos concurrentes sobre la misma
	// conversacion se serializan para que los timestamps no se crucen.
	// Con refcount, asi la entrada se borra al soltar el ultimo turno.
	mu    sync.Mutex
	locks map[string]*conversationLock
}

type conversationLock struct {
	mu   sync.Mutex
	refs int
}

func NewChatService(
	llmClient llm.ChatClient,
	avatars repository.AvatarRepository,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	window ContextWindow,
	limiter TurnRateLimiter,
) *ChatService {
	return &ChatService{
		llmClient:     llmClient,
		avatars:       avatars,
		conversations: conversations,
		messages:      messages,
		window:        window,
		limiter:       limiter,
		locks:         make(map[string]*conversationLock),
	}
}

// Chat procesa un turno. El mensaje del usuario se persiste apenas la
// conversacion existe; el turno del gemelo solo si el LLM responde.
func (s *ChatService) Chat(ctx context.Context, input ChatInput) (ChatResult, error) {
	if strings.TrimSpace(input.Message) == "" {
		return ChatResult{}, missingField("message")
	}
	if strings.TrimSpace(input.AvatarID) == "" {
		return ChatResult{}, missingField("avatar_id")
	}
	if s.limiter != nil && !s.limiter.Allow(input.UserID) {
		return ChatResult{}, ErrRateLimited
	}

	avatar, err := s.avatars.GetByID(ctx, input.AvatarID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ChatResult{}, fmt.Errorf("avatar %s: %w", input.AvatarID, ErrNotFound)
		}
		return ChatResult{}, fmt.Errorf("get avatar: %w", err)
	}
	if avatar.UserID != input.UserID {
		return ChatResult{}, ErrForbidden
	}

	conversation, created, err := s.resolveConversation(ctx, input)
	if err != nil {
		return ChatResult{}, err
	}

	unlock := s.lockConversation(conversation.ID)
	defer unlock()

	history, err := s.loadHistory(ctx, conversation.ID, created, input.PastMessages)
	if err != nil {
		return ChatResult{}, err
	}

	now := time.Now().UTC()
	userMsg := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		Role:           domain.RoleUser,
		Content:        input.Message,
		CreatedAt:      now,
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		return ChatResult{}, fmt.Errorf("persist user message: %w", err)
	}

	prompt := s.promptBuilder.BuildSystemPrompt(&avatar, input.Settings, now)
	chatMessages := make([]llm.ChatMessage, 0, len(history)+2)
	chatMessages = append(chatMessages, llm.ChatMessage{Role: "system", Content: prompt})
	chatMessages = append(chatMessages, s.window.Apply(history)...)
	chatMessages = append(chatMessages, llm.ChatMessage{Role: "user", Content: input.Message})

	response, err := s.llmClient.Complete(ctx, chatMessages)
	if err != nil {
		if errors.Is(err, llm.ErrTimeout) {
			return ChatResult{}, fmt.Errorf("llm: %w", ErrUpstreamTimeout)
		}
		return ChatResult{}, fmt.Errorf("llm: %v: %w", err, ErrUpstreamFailure)
	}

	twinMsg := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		Role:           domain.RoleTwin,
		Content:        response,
		CreatedAt:      time.Now().UTC(),
	}
	// El turno del gemelo nunca puede preceder al del usuario.
	if !twinMsg.CreatedAt.After(userMsg.CreatedAt) {
		twinMsg.CreatedAt = userMsg.CreatedAt.Add(time.Millisecond)
	}
	if err := s.messages.Create(ctx, twinMsg); err != nil {
		return ChatResult{}, fmt.Errorf("persist twin message: %w", err)
	}

	_ = s.conversations.Touch(ctx, conversation.ID)

	return ChatResult{
		Message:        response,
		ConversationID: conversation.ID,
		Timestamp:      twinMsg.CreatedAt,
	}, nil
}

// History devuelve los mensajes de una conversacion del usuario,
// ordenados por timestamp.
func (s *ChatService) History(ctx context.Context, userID, conversationID string) ([]domain.Message, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if conversation.UserID != userID {
		return nil, ErrForbidden
	}
	return s.messages.ListByConversationID(ctx, conversationID)
}

// resolveConversation busca la conversacion referida o crea una nueva:
// exactamente una fila nueva por llamada sin conversation_id.
func (s *ChatService) resolveConversation(ctx context.Context, input ChatInput) (domain.Conversation, bool, error) {
	if input.ConversationID != "" {
		conversation, err := s.conversations.GetByID(ctx, input.ConversationID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Conversation{}, false, fmt.Errorf("conversation %s: %w", input.ConversationID, ErrNotFound)
			}
			return domain.Conversation{}, false, fmt.Errorf("get conversation: %w", err)
		}
		if conversation.UserID != input.UserID {
			return domain.Conversation{}, false, ErrForbidden
		}
		return conversation, false, nil
	}

	now := time.Now().UTC()
	conversation := domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		AvatarID:  input.AvatarID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return domain.Conversation{}, false, fmt.Errorf("create conversation: %w", err)
	}
	return conversation, true, nil
}

// loadHistory arma el historial previo al turno actual. En conversaciones
// existentes manda lo persistido; los past_messages del cliente solo
// valen para una conversacion recien creada.
func (s *ChatService) loadHistory(ctx context.Context, conversationID string, created bool, past []PastTurn) ([]domain.Message, error) {
	if !created {
		history, err := s.messages.ListByConversationID(ctx, conversationID)
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		return history, nil
	}

	history := make([]domain.Message, 0, len(past))
	for _, turn := range past {
		role := domain.RoleUser
		if turn.Role == domain.RoleTwin || turn.Role == "assistant" {
			role = domain.RoleTwin
		}
		history = append(history, domain.Message{Role: role, Content: turn.Content})
	}
	return history, nil
}

func (s *ChatService) lockConversation(id string) func() {
	s.mu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &conversationLock{}
		s.locks[id] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}
