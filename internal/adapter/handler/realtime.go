package handler

import (
	stdErrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/johnquangdev/meeting-quality/errors"
	httpmw "github.com/johnquangdev/meeting-quality/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-quality/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-quality/internal/infrastructure/realtime"
	"github.com/johnquangdev/meeting-quality/pkg/config"
	"github.com/johnquangdev/meeting-quality/pkg/jwt"
)

const (
	// Subprotocol is the protocol name negotiated on /ws
	Subprotocol = "meetings.v1"

	bearerProtocolPrefix = "bearer."
)

// Realtime upgrades authenticated websocket connections and hands them to the hub
type Realtime struct {
	hub       *realtime.Hub
	validator httpmw.TokenValidator
	upgrader  websocket.Upgrader
	limit     rate.Limit
	burst     int
	logger    *zap.Logger
}

// NewRealtimeHandler creates the websocket gateway
func NewRealtimeHandler(hub *realtime.Hub, validator httpmw.TokenValidator, cfg *config.Config, logger *zap.Logger) *Realtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]struct{}, len(cfg.Server.AllowedOrigins))
	allowAll := false
	for _, o := range cfg.Server.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return &Realtime{
		hub:       hub,
		validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			Subprotocols:     []string{Subprotocol},
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowAll {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
		limit:  rate.Limit(cfg.Realtime.MessagesPerSecond),
		burst:  cfg.Realtime.Burst,
		logger: logger,
	}
}

// Serve handles GET /ws
// @Summary      Realtime channel
// @Description  Upgrades to a websocket. The token is read from a "bearer.<jwt>" Sec-WebSocket-Protocol entry
// @Description  (offered next to "meetings.v1"), then the Authorization header, then the token query parameter.
// @Tags         Realtime
// @Param        token  query  string  false  "Access token"
// @Success      101
// @Failure      403  {object}  common.ErrorResponse  "Origin not allowed"
// @Router       /ws [get]
func (h *Realtime) Serve(c echo.Context) error {
	r := c.Request()
	token := HandshakeToken(r)

	conn, err := h.upgrader.Upgrade(c.Response(), r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return nil
	}

	if token == "" {
		metrics.RecordWSAuthFailure("missing_token")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Authentication required"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return nil
	}

	claims, err := h.validator.ValidateAccessToken(token)
	if err != nil {
		code := errors.ErrorCode_AUTH_INVALID_TOKEN
		reason := "invalid_token"
		if stdErrors.Is(err, jwt.ErrExpired) {
			code = errors.ErrorCode_AUTH_TOKEN_EXPIRED
			reason = "expired_token"
		}
		metrics.RecordWSAuthFailure(reason)
		if err := realtime.Reject(conn, "Authentication failed", code.String()); err != nil {
			h.logger.Debug("failed to send auth_error", zap.Error(err))
		}
		return nil
	}

	var limiter *rate.Limiter
	if h.limit > 0 {
		limiter = rate.NewLimiter(h.limit, h.burst)
	}

	client := realtime.NewClient(h.hub, conn, httpmw.IdentityFrom(claims), limiter)
	if !h.hub.Register(client) {
		_ = conn.Close()
		return nil
	}
	client.Start()

	h.logger.Debug("realtime client connected",
		zap.String("channel_id", client.ID()),
		zap.String("user_id", claims.UserID.String()),
	)
	return nil
}

// HandshakeToken returns the access token of a websocket handshake
func HandshakeToken(r *http.Request) string {
	for _, p := range websocket.Subprotocols(r) {
		if strings.HasPrefix(p, bearerProtocolPrefix) {
			return strings.TrimPrefix(p, bearerProtocolPrefix)
		}
	}
	if token := httpmw.BearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}
