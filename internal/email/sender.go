package email

import (
	"context"
	"errors"
)

// Sender define la interfaz para envio de invitaciones de contribucion.
type Sender interface {
	SendContributionCode(ctx context.Context, toEmail string, code string, avatarName string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendContributionCode(_ context.Context, _ string, _ string, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
