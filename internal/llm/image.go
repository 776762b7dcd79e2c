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
)

// ImageGenerator produce una imagen a partir de un prompt y devuelve su URL.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIImageClient llama al endpoint /images/generations (DALL-E 3).
type OpenAIImageClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewOpenAIImageClient(baseURL, apiKey string) *OpenAIImageClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIImageClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *OpenAIImageClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := imageRequest{
		Model:          "dall-e-3",
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		Quality:        "standard",
		ResponseFormat: "url",
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("image http error: status=%d", resp.StatusCode)
	}

	var ir imageResponse
	if err := json.Unmarshal(respBody, &ir); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(ir.Data) == 0 || ir.Data[0].URL == "" {
		return "", fmt.Errorf("image empty response")
	}
	return ir.Data[0].URL, nil
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}
