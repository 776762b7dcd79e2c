package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"twin-llm/internal/llm"
	"twin-llm/internal/repository"
)

// Prompt fijo de composicion; las fotos son referencias, no parte del
// texto.
const portraitPrompt = "Create a professional business headshot in the style of a LinkedIn profile picture. " +
	"Use the provided reference images to create a composite professional portrait with a neutral background."

// PortraitService genera un retrato compuesto y, si se indica un avatar
// propio, escribe la URL resultante sobre su composite_image.
type PortraitService struct {
	generator llm.ImageGenerator
	avatars   repository.AvatarRepository
}

func NewPortraitService(generator llm.ImageGenerator, avatars repository.AvatarRepository) *PortraitService {
	return &PortraitService{generator: generator, avatars: avatars}
}

// Generate valida las fotos antes de tocar el upstream. avatarID es
// opcional; userID es el dueño autenticado.
func (s *PortraitService) Generate(ctx context.Context, userID string, photos []string, avatarID string) (string, error) {
	if len(photos) == 0 {
		return "", missingField("photos")
	}

	// Autorizacion antes del upstream: un pedido ajeno no paga la
	// generacion de imagen.
	if avatarID != "" {
		avatar, err := s.avatars.GetByID(ctx, avatarID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return "", fmt.Errorf("avatar %s: %w", avatarID, ErrNotFound)
			}
			return "", fmt.Errorf("get avatar: %w", err)
		}
		if avatar.UserID != userID {
			return "", ErrForbidden
		}
	}

	imageURL, err := s.generator.Generate(ctx, portraitPrompt)
	if err != nil {
		return "", fmt.Errorf("generate portrait: %v: %w", err, ErrUpstreamFailure)
	}

	if avatarID != "" {
		if err := s.avatars.UpdateCompositeImage(ctx, avatarID, imageURL); err != nil {
			return "", fmt.Errorf("save composite image: %w", err)
		}
	}

	return imageURL, nil
}
