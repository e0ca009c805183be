package handler

import (
	"github.com/labstack/echo/v4"

	meetingDTO "github.com/johnquangdev/meeting-quality/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-quality/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-quality/internal/infrastructure/metrics"
	meetingUsecase "github.com/johnquangdev/meeting-quality/internal/usecase/meeting"
)

func (h *Meeting) receipt(c echo.Context, receipt *meetingUsecase.SubmissionReceipt, err error) error {
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	metrics.RecordSubmission(string(receipt.Phase))
	return HandleSuccess(h.logger, c, receipt)
}

// SubmitEmotionalEvaluation handles POST /meetings/:id/emotional-evaluations
// @Summary      Submit emotional evaluations
// @Description  Replaces the caller's previous emotional evaluation
// @Tags         Submissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                              true  "Meeting ID (UUID)"
// @Param        request  body      meeting.EmotionalEvaluationRequest  true  "Ratings of other participants"
// @Success      200      {object}  common.SuccessResponse{data=meetingUsecase.SubmissionReceipt}
// @Failure      400      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Router       /meetings/{id}/emotional-evaluations [post]
func (h *Meeting) SubmitEmotionalEvaluation(c echo.Context) error {
	meetingID, userID, err := h.meetingCall(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.EmotionalEvaluationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	receipt, err := h.meetingService.SubmitEmotionalEvaluation(c.Request().Context(), meetingUsecase.EmotionalEvaluationInput{
		MeetingID:   meetingID,
		UserID:      userID,
		Evaluations: presenter.ToEmotionalRatings(req.Evaluations),
	})
	return h.receipt(c, receipt, err)
}

// SubmitUnderstandingContribution handles POST /meetings/:id/understanding-contributions
// @Summary      Submit understanding and contributions
// @Description  Replaces the caller's previous understanding/contribution submission
// @Tags         Submissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                                    true  "Meeting ID (UUID)"
// @Param        request  body      meeting.UnderstandingContributionRequest  true  "Scores"
// @Success      200      {object}  common.SuccessResponse{data=meetingUsecase.SubmissionReceipt}
// @Failure      400      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Router       /meetings/{id}/understanding-contributions [post]
func (h *Meeting) SubmitUnderstandingContribution(c echo.Context) error {
	meetingID, userID, err := h.meetingCall(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.UnderstandingContributionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	receipt, err := h.meetingService.SubmitUnderstandingContribution(c.Request().Context(), meetingUsecase.UnderstandingContributionInput{
		MeetingID:          meetingID,
		UserID:             userID,
		UnderstandingScore: *req.UnderstandingScore,
		Contributions:      presenter.ToContributionShares(req.Contributions),
	})
	return h.receipt(c, receipt, err)
}

// SubmitTaskPlanning handles POST /meetings/:id/task-plannings
// @Summary      Submit a task plan
// @Description  Replaces the caller's task plan and creates or updates the companion task
// @Tags         Submissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Meeting ID (UUID)"
// @Param        request  body      meeting.TaskPlanningRequest  true  "Task plan"
// @Success      200      {object}  common.SuccessResponse{data=meetingUsecase.SubmissionReceipt}
// @Failure      400      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse  "Not a participant or task already approved"
// @Failure      404      {object}  common.ErrorResponse
// @Router       /meetings/{id}/task-plannings [post]
func (h *Meeting) SubmitTaskPlanning(c echo.Context) error {
	meetingID, userID, err := h.meetingCall(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.TaskPlanningRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	receipt, err := h.meetingService.SubmitTaskPlanning(c.Request().Context(), meetingUsecase.TaskPlanningInput{
		MeetingID:                      meetingID,
		UserID:                         userID,
		TaskDescription:                req.TaskDescription,
		CommonQuestion:                 req.CommonQuestion,
		Deadline:                       req.Deadline,
		ExpectedContributionPercentage: *req.ExpectedContributionPercentage,
	})
	return h.receipt(c, receipt, err)
}

// SubmitTaskEvaluation handles POST /meetings/:id/task-evaluations
// @Summary      Submit task evaluations
// @Description  Scores the tasks planned by other participants. Rejected entirely when any author has no task plan.
// @Tags         Submissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Meeting ID (UUID)"
// @Param        request  body      meeting.TaskEvaluationRequest  true  "Importance scores"
// @Success      200      {object}  common.SuccessResponse{data=meetingUsecase.SubmissionReceipt}
// @Failure      400      {object}  common.ErrorResponse  "Unknown task author"
// @Failure      403      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Router       /meetings/{id}/task-evaluations [post]
func (h *Meeting) SubmitTaskEvaluation(c echo.Context) error {
	meetingID, userID, err := h.meetingCall(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.TaskEvaluationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	receipt, err := h.meetingService.SubmitTaskEvaluation(c.Request().Context(), meetingUsecase.TaskEvaluationInput{
		MeetingID:       meetingID,
		UserID:          userID,
		TaskEvaluations: presenter.ToTaskImportances(req.TaskEvaluations),
	})
	return h.receipt(c, receipt, err)
}
