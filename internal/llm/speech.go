package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// SpeechSynthesizer convierte texto en audio reproducible inline.
// voice es un id propio del proveedor; el mapeo genero→voz vive en el
// servicio, no aca.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// OpenAISpeechClient llama al endpoint /audio/speech (modelo tts-1, mp3).
type OpenAISpeechClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewOpenAISpeechClient(baseURL, apiKey string) *OpenAISpeechClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAISpeechClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *OpenAISpeechClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	reqBody := map[string]string{
		"model":           "tts-1",
		"voice":           voice,
		"input":           text,
		"response_format": "mp3",
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("tts http error: status=%d body=%s", resp.StatusCode, detail)
	}

	return io.ReadAll(resp.Body)
}

// GoogleSpeechClient implementa SpeechSynthesizer sobre Cloud Text-to-Speech.
// Proveedor alternativo seleccionable por configuracion.
type GoogleSpeechClient struct {
	client *texttospeech.Client
}

func NewGoogleSpeechClient(ctx context.Context, credentialsFile string) (*GoogleSpeechClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create tts client: %w", err)
	}
	return &GoogleSpeechClient{client: client}, nil
}

func (c *GoogleSpeechClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "en-US",
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := c.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return resp.AudioContent, nil
}

func (c *GoogleSpeechClient) Close() error {
	return c.client.Close()
}
