package middleware

import (
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-quality/errors"
	"github.com/johnquangdev/meeting-quality/pkg/jwt"
)

func TestEchoAuth(t *testing.T) {
	manager := jwt.NewManager("test-secret", time.Hour, "meeting-quality")
	expired := jwt.NewManager("test-secret", -time.Minute, "meeting-quality")
	userID := uuid.New()

	good, err := manager.GenerateAccessToken(userID, "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	old, err := expired.GenerateAccessToken(userID, "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	tests := []struct {
		name     string
		header   string
		cookie   string
		wantCode errors.ErrorCode
	}{
		{name: "bearer header", header: "Bearer " + good},
		{name: "lowercase scheme", header: "bearer " + good},
		{name: "cookie fallback", cookie: good},
		{name: "missing token", wantCode: errors.ErrorCode_UNAUTHENTICATED},
		{name: "garbage token", header: "Bearer nope", wantCode: errors.ErrorCode_AUTH_INVALID_TOKEN},
		{name: "expired token", header: "Bearer " + old, wantCode: errors.ErrorCode_AUTH_TOKEN_EXPIRED},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/meetings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			c := e.NewContext(req, httptest.NewRecorder())

			var gotUser uuid.UUID
			err := EchoAuth(manager, nil)(func(c echo.Context) error {
				gotUser, _ = c.Get(ContextUserID).(uuid.UUID)
				return nil
			})(c)

			if tt.wantCode == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if gotUser != userID {
					t.Errorf("user_id = %v, want %v", gotUser, userID)
				}
				if c.Get(ContextFullName) != "Alice" {
					t.Errorf("full_name = %v", c.Get(ContextFullName))
				}
				return
			}

			var appErr errors.AppError
			if !stdErrors.As(err, &appErr) {
				t.Fatalf("err = %v, want AppError", err)
			}
			if appErr.Code != tt.wantCode || appErr.HTTPCode != http.StatusUnauthorized {
				t.Errorf("got %s/%d, want %s/401", appErr.Code, appErr.HTTPCode, tt.wantCode)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"BEARER  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	}
	for in, want := range tests {
		if got := BearerToken(in); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", in, got, want)
		}
	}
}
