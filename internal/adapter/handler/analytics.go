package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// meetingQuery runs a read-only meeting query for the caller and writes its result.
func meetingQuery[T any](h *Meeting, c echo.Context, query func(ctx context.Context, meetingID, userID uuid.UUID) (T, error)) error {
	meetingID, userID, err := h.meetingCall(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := query(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, result)
}

// GetActiveParticipants handles GET /meetings/:id/active-participants
// @Summary      Live roster
// @Description  Participants currently connected to the meeting over the realtime channel
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=meetingUsecase.ActiveParticipants}
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id}/active-participants [get]
func (h *Meeting) GetActiveParticipants(c echo.Context) error {
	return meetingQuery(h, c, h.meetingService.GetActiveParticipants)
}

// GetVotingInfo handles GET /meetings/:id/voting-info
// @Summary      Voting progress
// @Description  How many live participants submitted for the current phase (creator only)
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=meetingUsecase.VotingInfo}
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id}/voting-info [get]
func (h *Meeting) GetVotingInfo(c echo.Context) error {
	return meetingQuery(h, c, h.meetingService.GetVotingInfo)
}

// GetPendingVoters handles GET /meetings/:id/pending-voters
// @Summary      Pending voters
// @Description  Live participants who have not submitted for the current phase (creator only)
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=meetingUsecase.PendingVoters}
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id}/pending-voters [get]
func (h *Meeting) GetPendingVoters(c echo.Context) error {
	return meetingQuery(h, c, h.meetingService.GetPendingVoters)
}

// GetAllSubmissions handles GET /meetings/:id/all-submissions
// @Summary      All submissions by participant
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=meetingUsecase.AllSubmissions}
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id}/all-submissions [get]
func (h *Meeting) GetAllSubmissions(c echo.Context) error {
	return meetingQuery(h, c, h.meetingService.GetAllSubmissions)
}

// GetPhaseSubmissions handles GET /meetings/:id/phase-submissions
// @Summary      All submissions by phase
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=meetingUsecase.PhaseSubmissions}
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id}/phase-submissions [get]
func (h *Meeting) GetPhaseSubmissions(c echo.Context) error {
	return meetingQuery(h, c, h.meetingService.GetPhaseSubmissions)
}

// GetStatistics handles GET /meetings/:id/statistics
// @Summary      Meeting statistics
// @Description  Per participant emotional, understanding and contribution statistics (finished meetings only)
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=meetingUsecase.Statistics}
// @Failure      400  {object}  common.ErrorResponse  "Meeting not finished"
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id}/statistics [get]
func (h *Meeting) GetStatistics(c echo.Context) error {
	return meetingQuery(h, c, h.meetingService.GetStatistics)
}

// GetTaskEvaluationAnalytics handles GET /meetings/:id/task-evaluation-analytics
// @Summary      Task importance analytics
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=meetingUsecase.TaskEvaluationAnalytics}
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id}/task-evaluation-analytics [get]
func (h *Meeting) GetTaskEvaluationAnalytics(c echo.Context) error {
	return meetingQuery(h, c, h.meetingService.GetTaskEvaluationAnalytics)
}

// GetFinalStatistics handles GET /meetings/:id/final-stats
// @Summary      Final statistics
// @Description  Given and received breakdown for every participant
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=meetingUsecase.FinalStatistics}
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id}/final-stats [get]
func (h *Meeting) GetFinalStatistics(c echo.Context) error {
	return meetingQuery(h, c, h.meetingService.GetFinalStatistics)
}

// ExportFinalStatistics handles POST /meetings/:id/final-stats/export
// @Summary      Export final statistics
// @Description  Archives the final statistics as JSON in object storage and returns a time limited download link
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=meetingUsecase.ArchivedReport}
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Failure      503  {object}  common.ErrorResponse  "Object storage disabled or unavailable"
// @Router       /meetings/{id}/final-stats/export [post]
func (h *Meeting) ExportFinalStatistics(c echo.Context) error {
	return meetingQuery(h, c, h.meetingService.ExportFinalStatistics)
}
