package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"twin-llm/internal/config"
	"twin-llm/internal/db"
	"twin-llm/internal/domain"
	"twin-llm/internal/llm"
	"twin-llm/internal/repository"
	"twin-llm/internal/service"
)

// Linea fija cuando el relay falla: la conversacion nunca queda muerta,
// el reintento es del usuario.
const fallbackTwinLine = "I'm having trouble finding my words right now. Could you ask me that again?"

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	avatarRepo := repository.NewPgAvatarRepository(pool)
	conversationRepo := repository.NewPgConversationRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)

	llmTimeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	llmClient := llm.NewHTTPChatClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, llmTimeout, logger)
	window := service.NewContextWindow(cfg.ContextMaxTurns, cfg.ContextMaxTokens)
	chatSvc := service.NewChatService(llmClient, avatarRepo, conversationRepo, messageRepo, window, nil)
	speechSvc := service.NewSpeechService(llm.NewOpenAISpeechClient(cfg.LLMBaseURL, cfg.LLMAPIKey), cfg.SpeechProvider)

	user, err := ensureUser(ctx, userRepo, "cli_test@example.com")
	if err != nil {
		log.Fatal(err)
	}

	avatar, err := selectAvatar(ctx, reader, avatarRepo, user.ID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\n===== Conversacion con %s =====\n", avatar.FullName())
	fmt.Printf("%s: Hello, it's %s here. It's so nice to see you. What would you like to talk about today?\n", avatar.Initials(), avatar.FirstName)
	fmt.Println("(escribe 'salir' para terminar, '/audio' para alternar audio)")

	var (
		conversationID string
		audioEnabled   bool
	)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "salir") {
			break
		}
		if strings.EqualFold(line, "/audio") {
			audioEnabled = !audioEnabled
			fmt.Printf("audio: %v\n", audioEnabled)
			continue
		}

		result, err := chatSvc.Chat(ctx, service.ChatInput{
			UserID:         user.ID,
			Message:        line,
			AvatarID:       avatar.ID,
			ConversationID: conversationID,
		})
		if err != nil {
			logger.Warn("chat turn failed", zap.Error(err))
			fmt.Printf("%s: %s\n", avatar.Initials(), fallbackTwinLine)
			continue
		}
		conversationID = result.ConversationID
		fmt.Printf("%s: %s\n", avatar.Initials(), result.Message)

		if audioEnabled {
			if path, err := saveSpeech(ctx, speechSvc, result.Message, avatar.Gender); err != nil {
				fmt.Printf("(audio no disponible: %v)\n", err)
			} else {
				fmt.Printf("(audio guardado en %s)\n", path)
			}
		}
	}
}

func ensureUser(ctx context.Context, users repository.UserRepository, emailAddr string) (domain.User, error) {
	user, err := users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	userSvc := service.NewUserService(zap.NewNop(), users)
	return userSvc.CreateUser(ctx, service.CreateUserInput{
		Email:       emailAddr,
		DisplayName: "CLI Test",
		Password:    "cli-test-password",
	})
}

func selectAvatar(ctx context.Context, reader *bufio.Reader, avatars repository.AvatarRepository, userID string) (domain.Avatar, error) {
	existing, err := avatars.ListByUserID(ctx, userID)
	if err != nil {
		return domain.Avatar{}, err
	}
	if len(existing) == 0 {
		fmt.Println("No hay avatares. Crea uno nuevo.")
		return createAvatarFlow(ctx, reader, avatars, userID)
	}

	fmt.Println("Avatares disponibles:")
	for i, a := range existing {
		fmt.Printf("[%d] %s (ID: %s)\n", i+1, a.FullName(), a.ID)
	}
	fmt.Println("[C] Crear nuevo avatar")
	fmt.Print("Selecciona un avatar: ")
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)

	if strings.EqualFold(choice, "C") {
		return createAvatarFlow(ctx, reader, avatars, userID)
	}
	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(existing) {
		return domain.Avatar{}, fmt.Errorf("seleccion invalida")
	}
	return existing[idx-1], nil
}

func createAvatarFlow(ctx context.Context, reader *bufio.Reader, avatars repository.AvatarRepository, userID string) (domain.Avatar, error) {
	drafts := service.NewMemoryDraftStore()
	onboarding := service.NewOnboardingService(zap.NewNop(), drafts, avatars, nil, service.NewProgressRegistry(), service.PersonalityNextDashboard)

	sessionID, _, err := onboarding.Start(ctx)
	if err != nil {
		return domain.Avatar{}, err
	}
	if _, err := onboarding.SelectType(ctx, sessionID, domain.AvatarTypeLovedOne); err != nil {
		return domain.Avatar{}, err
	}

	fmt.Print("Nombre: ")
	firstName, _ := reader.ReadString('\n')
	fmt.Print("Apellido: ")
	lastName, _ := reader.ReadString('\n')
	fmt.Print("Anio de nacimiento: ")
	yearLine, _ := reader.ReadString('\n')
	year, _ := strconv.Atoi(strings.TrimSpace(yearLine))

	_, avatar, err := onboarding.SubmitProfile(ctx, sessionID, userID, service.ProfileInput{
		FirstName:   strings.TrimSpace(firstName),
		LastName:    strings.TrimSpace(lastName),
		YearOfBirth: year,
	}, "")
	if err != nil {
		return domain.Avatar{}, err
	}
	if _, err := onboarding.SubmitPersonality(ctx, sessionID, nil, true); err != nil {
		return domain.Avatar{}, err
	}
	return avatar, nil
}

func saveSpeech(ctx context.Context, speech *service.SpeechService, text, gender string) (string, error) {
	encoded, err := speech.Synthesize(ctx, text, service.SpeechProfile{Gender: gender})
	if err != nil {
		return "", err
	}
	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	path := fmt.Sprintf("twin-%d.mp3", time.Now().Unix())
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
