package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"twin-llm/internal/domain"
	"twin-llm/internal/llm"
)

// SpeechProfile son los campos del avatar que influyen en la voz. El
// cliente manda el perfil completo; solo el genero decide hoy.
type SpeechProfile struct {
	Gender string `json:"gender,omitempty"`
}

// SpeechService selecciona la voz y delega la sintesis. Sin persistencia:
// el audio vuelve inline y se descarta.
type SpeechService struct {
	synthesizer llm.SpeechSynthesizer
	provider    string
}

func NewSpeechService(synthesizer llm.SpeechSynthesizer, provider string) *SpeechService {
	if provider == "" {
		provider = "openai"
	}
	return &SpeechService{synthesizer: synthesizer, provider: provider}
}

// Synthesize convierte texto a audio base64 listo para reproduccion inline.
func (s *SpeechService) Synthesize(ctx context.Context, text string, profile SpeechProfile) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", missingField("text")
	}

	voice := s.voiceFor(profile)
	audio, err := s.synthesizer.Synthesize(ctx, text, voice)
	if err != nil {
		return "", fmt.Errorf("synthesize: %v: %w", err, ErrUpstreamFailure)
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}

// voiceFor mapea genero a voz: tres opciones, neutral por defecto.
func (s *SpeechService) voiceFor(profile SpeechProfile) string {
	gender := strings.ToLower(strings.TrimSpace(profile.Gender))

	if s.provider == "google" {
		switch gender {
		case domain.GenderMale:
			return "en-US-Neural2-D"
		case domain.GenderFemale:
			return "en-US-Neural2-F"
		default:
			return "en-US-Neural2-C"
		}
	}

	switch gender {
	case domain.GenderMale:
		return "echo"
	case domain.GenderFemale:
		return "alloy"
	default:
		return "nova"
	}
}
