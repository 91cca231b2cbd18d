package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		DatabaseURL:         "postgres://localhost/sakinah",
		JWTSecret:           "test-secret-1234567890",
		JWTKeyID:            "v2",
		JWTAccessTTLMinutes: 160,
		LLMProvider:         "mock",
		InferenceProvider:   "local",
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("LLM_MODEL", "")
	cfg := Load()
	if cfg.JWTAccessTTLMinutes != 160 {
		t.Fatalf("expected 160 minute token ttl, got %d", cfg.JWTAccessTTLMinutes)
	}
	if cfg.LLMModel != "meta-llama/Llama-4-Scout-17B-16E-Instruct" {
		t.Fatalf("unexpected default model %q", cfg.LLMModel)
	}
	if cfg.AITimeoutSeconds != 20 {
		t.Fatalf("expected 20s AI timeout, got %d", cfg.AITimeoutSeconds)
	}
	if len(cfg.CORSAllowOrigins) != 3 {
		t.Fatalf("expected default CORS origins, got %v", cfg.CORSAllowOrigins)
	}
}

func TestLoadReadsRotationKeys(t *testing.T) {
	t.Setenv("JWT_PREVIOUS_SECRETS", "v0:old-secret-0000000000, v1:old-secret-1111111111")
	cfg := Load()
	if got := cfg.JWTPreviousSecrets["v1"]; got != "old-secret-1111111111" {
		t.Fatalf("expected v1 previous secret, got %q", got)
	}
	if len(cfg.JWTPreviousSecrets) != 2 {
		t.Fatalf("expected two previous secrets, got %d", len(cfg.JWTPreviousSecrets))
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: "JWT_SECRET is required"},
		{name: "short secret", mutate: func(c *Config) { c.JWTSecret = "short" }, wantErr: "too short"},
		{name: "insecure default", mutate: func(c *Config) { c.JWTSecret = "change-me-in-production" }, wantErr: "insecure"},
		{name: "reused kid", mutate: func(c *Config) {
			c.JWTPreviousSecrets = map[string]string{"v2": "old-secret-1111111111"}
		}, wantErr: "reuses active key id"},
		{name: "malformed rotation", mutate: func(c *Config) {
			_, c.rotationKeysMalformed = parseRotationKeys("broken")
		}, wantErr: "malformed"},
		{name: "unknown llm provider", mutate: func(c *Config) { c.LLMProvider = "carrier-pigeon" }, wantErr: "LLM_PROVIDER"},
		{name: "http llm without url", mutate: func(c *Config) { c.LLMProvider = "http" }, wantErr: "LLM_API_URL"},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = " " }, wantErr: "DATABASE_URL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
