package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"twin-llm/internal/domain"
	"twin-llm/internal/repository"
)

// AvatarService expone lecturas y edicion de avatares fuera del
// asistente de onboarding.
type AvatarService struct {
	avatars repository.AvatarRepository
}

func NewAvatarService(avatars repository.AvatarRepository) *AvatarService {
	return &AvatarService{avatars: avatars}
}

func (s *AvatarService) List(ctx context.Context, userID string) ([]domain.Avatar, error) {
	avatars, err := s.avatars.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list avatars: %w", err)
	}
	return avatars, nil
}

func (s *AvatarService) Get(ctx context.Context, userID, avatarID string) (domain.Avatar, error) {
	avatar, err := s.avatars.GetByID(ctx, avatarID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Avatar{}, fmt.Errorf("avatar %s: %w", avatarID, ErrNotFound)
		}
		return domain.Avatar{}, fmt.Errorf("get avatar: %w", err)
	}
	if avatar.UserID != userID {
		return domain.Avatar{}, ErrForbidden
	}
	return avatar, nil
}

// Update reescribe los campos de perfil de un avatar existente con las
// mismas validaciones que el paso ProfileCreate del asistente.
func (s *AvatarService) Update(ctx context.Context, userID, avatarID string, input ProfileInput) (domain.Avatar, error) {
	existing, err := s.Get(ctx, userID, avatarID)
	if err != nil {
		return domain.Avatar{}, err
	}
	if err := validateProfile(existing.AvatarType, input); err != nil {
		return domain.Avatar{}, err
	}

	avatar := existing
	avatar.FirstName = input.FirstName
	avatar.LastName = input.LastName
	avatar.Gender = input.Gender
	avatar.YearOfBirth = input.YearOfBirth
	avatar.BirthPlace = input.BirthPlace
	avatar.PlacesLived = input.PlacesLived
	avatar.Ethnicity = input.Ethnicity
	avatar.Photos = input.Photos
	avatar.UpdatedAt = time.Now().UTC()
	if avatar.AvatarType == domain.AvatarTypeLovedOne {
		avatar.YearOfDeath = input.YearOfDeath
	}

	if err := s.avatars.Update(ctx, avatar); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Avatar{}, fmt.Errorf("avatar %s: %w", avatarID, ErrNotFound)
		}
		return domain.Avatar{}, fmt.Errorf("update avatar: %w", err)
	}
	return avatar, nil
}
