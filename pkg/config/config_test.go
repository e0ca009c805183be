package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Meeting.SubmissionPolicy != SubmissionPolicyPermissive {
		t.Errorf("Meeting.SubmissionPolicy = %q, want permissive", cfg.Meeting.SubmissionPolicy)
	}
	if cfg.Meeting.ActivationInterval != time.Minute {
		t.Errorf("Meeting.ActivationInterval = %v, want 1m", cfg.Meeting.ActivationInterval)
	}
	if got := cfg.GetRedisAddr(); got != "localhost:6379" {
		t.Errorf("GetRedisAddr() = %q", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("MEETING_SUBMISSION_POLICY", "strict")
	t.Setenv("DB_NAME", "quality_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Meeting.SubmissionPolicy != SubmissionPolicyStrict {
		t.Errorf("SubmissionPolicy = %q, want strict", cfg.Meeting.SubmissionPolicy)
	}
	if cfg.Database.Name != "quality_test" {
		t.Errorf("Database.Name = %q", cfg.Database.Name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing secret", func(c *Config) { c.JWT.AccessSecret = "" }, true},
		{"unknown policy", func(c *Config) { c.Meeting.SubmissionPolicy = "lenient" }, true},
		{"zero interval", func(c *Config) { c.Meeting.ActivationInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				JWT:     JWTConfig{AccessSecret: "secret"},
				Meeting: MeetingConfig{SubmissionPolicy: SubmissionPolicyPermissive, ActivationInterval: time.Minute},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
