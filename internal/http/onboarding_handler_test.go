package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"twin-llm/internal/domain"
	"twin-llm/internal/service"
)

func setupOnboardingRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewOnboardingService(zap.NewNop(), service.NewMemoryDraftStore(), nil, nil, service.NewProgressRegistry(), "")
	h := NewOnboardingHandler(zap.NewNop(), svc)
	r := gin.New()
	r.POST("/onboarding/start", h.Start)
	r.POST("/onboarding/type", h.SelectType)
	r.GET("/onboarding/draft", h.Draft)
	return r
}

func performRequestWithHeaders(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestOnboardingHandlerStart_IssuesSessionHeader(t *testing.T) {
	r := setupOnboardingRouter()

	rec := performRequest(r, http.MethodPost, "/onboarding/start", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if rec.Header().Get(sessionHeader) == "" {
		t.Fatalf("expected %s header on start response", sessionHeader)
	}

	var body struct {
		SessionID string              `json:"session_id"`
		Draft     domain.DraftProfile `json:"draft"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.SessionID != rec.Header().Get(sessionHeader) {
		t.Fatalf("session header and body disagree")
	}
	if body.Draft.State != domain.StateTypeSelect {
		t.Fatalf("expected initial state %q, got %q", domain.StateTypeSelect, body.Draft.State)
	}
}

func TestOnboardingHandlerSelectType_RequiresSessionHeader(t *testing.T) {
	r := setupOnboardingRouter()

	rec := performRequest(r, http.MethodPost, "/onboarding/type", map[string]string{"avatar_type": domain.AvatarTypeSelf})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	var body struct {
		Field string `json:"field"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Field != "session" {
		t.Fatalf("expected field \"session\", got %q", body.Field)
	}
}

func TestOnboardingHandlerDraft_UnknownSessionResets(t *testing.T) {
	r := setupOnboardingRouter()

	rec := performRequestWithHeaders(r, http.MethodGet, "/onboarding/draft", nil, map[string]string{
		sessionHeader: "ghost-session",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	var body struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.State != domain.StateTypeSelect {
		t.Fatalf("expected reset to %q, got %q", domain.StateTypeSelect, body.State)
	}
}
