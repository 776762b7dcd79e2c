package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"twin-llm/internal/domain"
	"twin-llm/internal/email"
	"twin-llm/internal/repository"
)

var ErrEmailSendFailure = errors.New("email send failed")

// Codigos legibles: sin 0/O ni 1/I/L.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
const codeLength = 8

// InviteService acuna codigos de contribucion y los envia por correo.
type InviteService struct {
	logger  *zap.Logger
	avatars repository.AvatarRepository
	codes   repository.ContributionCodeRepository
	sender  email.Sender
}

func NewInviteService(logger *zap.Logger, avatars repository.AvatarRepository, codes repository.ContributionCodeRepository, sender email.Sender) *InviteService {
	return &InviteService{
		logger:  logger,
		avatars: avatars,
		codes:   codes,
		sender:  sender,
	}
}

// Invite genera un codigo ligado al avatar y lo manda al invitado. El
// codigo queda persistido aunque el correo falle; el error distingue
// ambos casos.
func (s *InviteService) Invite(ctx context.Context, userID, avatarID, toEmail string) (domain.ContributionCode, error) {
	toEmail = normalizeEmail(toEmail)
	if toEmail == "" {
		return domain.ContributionCode{}, missingField("email")
	}

	avatar, err := s.avatars.GetByID(ctx, avatarID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ContributionCode{}, fmt.Errorf("avatar %s: %w", avatarID, ErrNotFound)
		}
		return domain.ContributionCode{}, fmt.Errorf("get avatar: %w", err)
	}
	if avatar.UserID != userID {
		return domain.ContributionCode{}, ErrForbidden
	}

	raw, err := generateContributionCode()
	if err != nil {
		return domain.ContributionCode{}, err
	}

	code := domain.ContributionCode{
		Code:      raw,
		AvatarID:  avatarID,
		CreatedBy: userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.codes.Create(ctx, code); err != nil {
		return domain.ContributionCode{}, fmt.Errorf("create contribution code: %w", err)
	}

	if s.sender == nil {
		return code, ErrEmailSendFailure
	}
	if err := s.sender.SendContributionCode(ctx, toEmail, raw, avatar.FullName()); err != nil {
		s.logger.Warn("send contribution code failed", zap.Error(err), zap.String("avatar_id", avatarID))
		return code, ErrEmailSendFailure
	}
	return code, nil
}

func generateContributionCode() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
