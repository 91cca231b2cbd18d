package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"sakinah/backend/internal/auth"
	"sakinah/backend/internal/chat"
	"sakinah/backend/internal/config"
	"sakinah/backend/internal/emotion"
	"sakinah/backend/internal/llm"
	"sakinah/backend/internal/logging"
	"sakinah/backend/internal/store"
	"sakinah/backend/internal/store/storetest"
	"sakinah/backend/internal/translate"
)

const testJWTSecret = "test-secret-1234567890"

// testDictionary stands in for the AR->EN model; unknown text passes through.
var testDictionary = map[string]string{
	"أنا حزين":          "I am sad and lonely",
	"أنا خائف من الغد": "I am scared and worried about tomorrow",
	"شكرا لك":           "thank you, I feel better",
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logging.Init(logging.Config{Level: zerolog.Disabled.String()})
	os.Exit(m.Run())
}

type testEnv struct {
	router      *gin.Engine
	store       *store.Store
	tokens      *auth.TokenManager
	cfg         config.Config
	failArToEn  bool
	failEnToAr  bool
	failLLM     bool
	llmRequests int
}

// flakyModel wraps the offline model so tests can force upstream failures.
type flakyModel struct {
	env *testEnv
	llm.MockChatModel
}

func (f flakyModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.env.llmRequests++
	if f.env.failLLM {
		return nil, errors.New("upstream unavailable")
	}
	return f.MockChatModel.Generate(ctx, input, opts...)
}

func newTestConfig() config.Config {
	return config.Config{
		AppEnv:              "test",
		AppName:             "Sakinah API Test",
		AppPort:             "0",
		DatabaseURL:         "test",
		JWTSecret:           testJWTSecret,
		JWTKeyID:            "v1",
		JWTIssuer:           "sakinah-api",
		JWTAccessTTLMinutes: 160,
		LLMProvider:         "mock",
		InferenceProvider:   "local",
		CORSAllowOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
			"http://localhost:3000",
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{cfg: newTestConfig()}
	env.store = store.New(storetest.Open(t))

	tokens, err := auth.NewTokenManager(auth.KeyConfig{
		ActiveKeyID:  env.cfg.JWTKeyID,
		ActiveSecret: env.cfg.JWTSecret,
		Issuer:       env.cfg.JWTIssuer,
		AccessTTL:    time.Duration(env.cfg.JWTAccessTTLMinutes) * time.Minute,
	})
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	env.tokens = tokens

	llmService, err := llm.NewService(context.Background(), flakyModel{env: env})
	if err != nil {
		t.Fatalf("llm service: %v", err)
	}

	chatService := chat.NewService(chat.Deps{
		Store: env.store,
		ArabicToEnglish: translate.Func(func(_ context.Context, text string) (string, error) {
			if env.failArToEn {
				return "", errors.New("translation model loading")
			}
			if english, ok := testDictionary[text]; ok {
				return english, nil
			}
			return text, nil
		}),
		EnglishToArabic: translate.Func(func(_ context.Context, text string) (string, error) {
			if env.failEnToAr {
				return "", errors.New("translation model loading")
			}
			return "ترجمة " + text, nil
		}),
		Classifier: emotion.Lexicon{},
		LLM:        llmService,
	})

	env.router = New(env.cfg, Services{
		Store: env.store,
		Auth:  auth.NewService(env.store, tokens).WithBcryptCost(bcrypt.MinCost),
		Chat:  chatService,
	}).Router()
	return env
}

// registerAndLogin creates a user through the API and returns its token.
func registerAndLogin(t *testing.T, env *testEnv, username string) string {
	t.Helper()
	rec := performRequest(t, env.router, http.MethodPost, "/auth/register", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret-pass",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: status %d body=%s", username, rec.Code, rec.Body.String())
	}

	rec = performRequest(t, env.router, http.MethodPost, "/auth/login", "", map[string]any{
		"username": username,
		"password": "secret-pass",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body=%s", username, rec.Code, rec.Body.String())
	}
	token, _ := decodeJSONMap(t, rec)["access_token"].(string)
	if token == "" {
		t.Fatalf("login %s returned no access token", username)
	}
	return token
}

func performRequest(
	t *testing.T,
	router http.Handler,
	method, targetPath, token string,
	body any,
	headers map[string]string,
) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, targetPath, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSONMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response JSON: %v; body=%s", err, rec.Body.String())
	}
	return payload
}

func decodeJSONList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var payload []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response JSON list: %v; body=%s", err, rec.Body.String())
	}
	return payload
}

func responseDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeJSONMap(t, rec)
	detail, _ := body["detail"].(string)
	return detail
}
