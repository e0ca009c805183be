package handler

import (
	stdErrors "errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/errors"
	"github.com/johnquangdev/meeting-quality/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	httpmw "github.com/johnquangdev/meeting-quality/internal/infrastructure/http/middleware"
	usecaseErrors "github.com/johnquangdev/meeting-quality/internal/usecase/errors"
	pkgvalidator "github.com/johnquangdev/meeting-quality/pkg/validator"
)

// getRequestID reads the id set by the RequestID middleware
func getRequestID(c echo.Context) string {
	if c == nil || c.Response() == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized 200 response
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	return HandleSuccessWithStatus(logger, c, http.StatusOK, data)
}

// HandleSuccessWithStatus writes a standardized success response with status
func HandleSuccessWithStatus(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	if logger != nil {
		logger.Debug("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}
	return c.JSON(status, common.SuccessResponse{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	})
}

// HandleError maps err to an AppError and writes the error envelope
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	appErr := toAppError(c, err)

	if logger != nil {
		fields := []zap.Field{
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.String("app_code", appErr.Code.String()),
			zap.Error(err),
		}
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.Error("http.response.error", fields...)
		} else {
			logger.Info("http.response.error", fields...)
		}
	}

	body := common.ErrorResponse{
		Code:    appErr.Code.String(),
		Message: appErr.Message,
		Details: appErr.Details,
	}
	// Internal causes stay in the logs.
	if appErr.Raw != nil && appErr.HTTPCode < http.StatusInternalServerError {
		body.Info = appErr.Raw.Error()
	}
	return c.JSON(appErr.HTTPCode, body)
}

// ErrorHandler renders errors returned by middleware and unmatched routes with the same envelope.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if err := HandleError(logger, c, err); err != nil && logger != nil {
			logger.Error("failed to write error response", zap.Error(err))
		}
	}
}

// toAppError translates usecase and transport errors into the client-facing taxonomy.
func toAppError(c echo.Context, err error) errors.AppError {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	var httpErr *echo.HTTPError
	if stdErrors.As(err, &httpErr) {
		return fromHTTPError(httpErr)
	}

	switch {
	case stdErrors.Is(err, usecaseErrors.ErrMeetingNotFound):
		return errors.ErrMeetingNotFound(meetingParam(c))
	case stdErrors.Is(err, usecaseErrors.ErrTaskNotFound):
		return errors.ErrTaskNotFound(c.Param("id"))
	case stdErrors.Is(err, usecaseErrors.ErrUserNotFound):
		return errors.ErrUserNotFound().WithRaw(err)
	case stdErrors.Is(err, usecaseErrors.ErrNotFound):
		return errors.ErrNotFound("Resource")

	case stdErrors.Is(err, usecaseErrors.ErrNotCreator):
		return errors.ErrNotCreator()
	case stdErrors.Is(err, usecaseErrors.ErrNotParticipant):
		return errors.ErrNotParticipant()
	case stdErrors.Is(err, usecaseErrors.ErrCreatorCannotSubmit):
		return errors.ErrCreatorCannotSubmit()
	case stdErrors.Is(err, usecaseErrors.ErrNotTaskAuthor):
		return errors.ErrNotTaskAuthor()
	case stdErrors.Is(err, usecaseErrors.ErrTaskApproved):
		return errors.ErrTaskApproved()
	case stdErrors.Is(err, usecaseErrors.ErrForbidden):
		return errors.ErrForbidden("Forbidden")

	case stdErrors.Is(err, usecaseErrors.ErrPhaseMismatch):
		var mismatch *usecaseErrors.PhaseMismatchError
		current := ""
		if stdErrors.As(err, &mismatch) {
			current = mismatch.Current
		}
		return errors.ErrPhaseMismatch(current)
	case stdErrors.Is(err, usecaseErrors.ErrUnknownTaskAuthor):
		var unknown *entities.UnknownTaskAuthorError
		if stdErrors.As(err, &unknown) {
			return errors.ErrUnknownTaskAuthor(unknown.Error())
		}
		return errors.ErrUnknownTaskAuthor("Task author not found in task plannings")
	case stdErrors.Is(err, usecaseErrors.ErrMeetingNotFinished):
		return errors.ErrMeetingNotFinished()
	case stdErrors.Is(err, usecaseErrors.ErrInvalidPhase):
		return errors.ErrInvalidArgument("Invalid meeting phase")
	case stdErrors.Is(err, usecaseErrors.ErrInvalidInput):
		return errors.ErrInvalidArgument("Invalid input").WithRaw(err)

	case stdErrors.Is(err, usecaseErrors.ErrTaskAlreadyExists):
		return errors.ErrTaskAlreadyExists(meetingParam(c))
	case stdErrors.Is(err, usecaseErrors.ErrAlreadyExists):
		return errors.ErrAlreadyExists("Resource")

	case stdErrors.Is(err, usecaseErrors.ErrUnauthorized):
		return errors.ErrUnauthenticated()

	case stdErrors.Is(err, usecaseErrors.ErrStorageUnavailable):
		return errors.ErrStorageUnavailable()
	case stdErrors.Is(err, usecaseErrors.ErrStorageFailed):
		return errors.ErrStorageFailed("export final statistics", err)
	}

	return errors.ErrInternal(err)
}

func fromHTTPError(he *echo.HTTPError) errors.AppError {
	msg := http.StatusText(he.Code)
	if s, ok := he.Message.(string); ok && s != "" {
		msg = s
	}

	var e errors.AppError
	switch {
	case he.Code == http.StatusNotFound:
		e = errors.ErrNotFound("Route")
	case he.Code == http.StatusUnauthorized:
		e = errors.ErrUnauthenticated()
	case he.Code == http.StatusForbidden:
		e = errors.ErrForbidden(msg)
	case he.Code >= http.StatusInternalServerError:
		e = errors.ErrInternal(he)
	default:
		e = errors.ErrInvalidArgument(msg)
	}
	e.HTTPCode = he.Code
	return e
}

// meetingParam returns the meeting id path parameter, whichever name the route uses.
func meetingParam(c echo.Context) string {
	if id := c.Param("meetingId"); id != "" {
		return id
	}
	if strings.HasPrefix(c.Path(), "/meetings/:id") {
		return c.Param("id")
	}
	return ""
}

// currentUserID returns the caller id set by the auth middleware
func currentUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(httpmw.ContextUserID).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, errors.ErrUnauthenticated()
	}
	return userID, nil
}

// parseMeetingID parses a meeting id path parameter
func parseMeetingID(c echo.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.ErrInvalidMeetingID(raw)
	}
	return id, nil
}

// parseTaskID parses the task id path parameter
func parseTaskID(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.ErrInvalidArgument("Invalid task ID").WithDetail("task_id", raw)
	}
	return id, nil
}

// bindAndValidate decodes the body into req and runs struct validation
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.ErrInvalidPayload(err)
	}
	if err := c.Validate(req); err != nil {
		return errors.ErrInvalidArgument(pkgvalidator.Describe(err))
	}
	return nil
}
