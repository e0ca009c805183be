package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/internal/adapter/presenter"
	userUsecase "github.com/johnquangdev/meeting-quality/internal/usecase/user"
)

// User handles user directory requests
type User struct {
	userService userUsecase.Service
	logger      *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService userUsecase.Service, logger *zap.Logger) *User {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &User{userService: userService, logger: logger}
}

// ListUsers handles GET /users
// @Summary      List users
// @Description  Active users, for picking meeting participants
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.SuccessResponse{data=user.ListUsersResponse}
// @Failure      401  {object}  common.ErrorResponse
// @Router       /users [get]
func (h *User) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToListUsersResponse(users))
}
