package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/internal/adapter/dto/common"
	meetingDTO "github.com/johnquangdev/meeting-quality/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-quality/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	meetingUsecase "github.com/johnquangdev/meeting-quality/internal/usecase/meeting"
)

// Meeting handles meeting HTTP requests
type Meeting struct {
	meetingService meetingUsecase.Service
	logger         *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingService meetingUsecase.Service, logger *zap.Logger) *Meeting {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Meeting{
		meetingService: meetingService,
		logger:         logger,
	}
}

// meetingCall resolves the caller and the :id meeting of the request.
func (h *Meeting) meetingCall(c echo.Context) (meetingID, userID uuid.UUID, err error) {
	userID, err = currentUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	meetingID, err = parseMeetingID(c, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return meetingID, userID, nil
}

// CreateMeeting handles POST /meetings
// @Summary      Create a meeting
// @Description  Creates a meeting owned by the caller. The creator is always added to the participants.
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      meeting.CreateMeetingRequest  true  "Meeting"
// @Success      201      {object}  common.SuccessResponse{data=meeting.MeetingResponse}
// @Failure      400      {object}  common.ErrorResponse
// @Failure      401      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse  "Unknown participant"
// @Router       /meetings [post]
func (h *Meeting) CreateMeeting(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.CreateMeetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.meetingService.CreateMeeting(c.Request().Context(), meetingUsecase.CreateMeetingInput{
		Title:          req.Title,
		Question:       req.Question,
		ParticipantIDs: req.ParticipantIDs,
		UpcomingDate:   req.UpcomingDate,
		CreatorID:      userID,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccessWithStatus(h.logger, c, http.StatusCreated, presenter.ToMeetingResponse(meeting))
}

// ListMeetings handles GET /meetings
// @Summary      List meetings
// @Description  Lists meetings the caller takes part in, newest first
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        filter  query     string  false  "current, past or upcoming"  Enums(current, past, upcoming)
// @Success      200     {object}  common.SuccessResponse{data=meeting.ListMeetingsResponse}
// @Failure      400     {object}  common.ErrorResponse
// @Failure      401     {object}  common.ErrorResponse
// @Router       /meetings [get]
func (h *Meeting) ListMeetings(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meetings, err := h.meetingService.ListMeetings(c.Request().Context(), userID, c.QueryParam("filter"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToListMeetingsResponse(meetings))
}

// GetMeeting handles GET /meetings/:id
// @Summary      Get meeting details
// @Description  Returns the meeting with every ledger enriched with participant names and task approval
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=meetingUsecase.MeetingDetail}
// @Failure      400  {object}  common.ErrorResponse
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id} [get]
func (h *Meeting) GetMeeting(c echo.Context) error {
	meetingID, userID, err := h.meetingCall(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	detail, err := h.meetingService.GetMeeting(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, detail)
}

// UpdateMeeting handles PATCH /meetings/:id
// @Summary      Update a meeting
// @Description  Patches title, question, participants or date (creator only)
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Meeting ID (UUID)"
// @Param        request  body      meeting.UpdateMeetingRequest  true  "Fields to change"
// @Success      200      {object}  common.SuccessResponse{data=meeting.MeetingResponse}
// @Failure      400      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Router       /meetings/{id} [patch]
func (h *Meeting) UpdateMeeting(c echo.Context) error {
	meetingID, userID, err := h.meetingCall(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.UpdateMeetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.meetingService.UpdateMeeting(c.Request().Context(), meetingUsecase.UpdateMeetingInput{
		MeetingID:      meetingID,
		UserID:         userID,
		Title:          req.Title,
		Question:       req.Question,
		ParticipantIDs: req.ParticipantIDs,
		UpcomingDate:   req.UpcomingDate,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(meeting))
}

// DeleteMeeting handles DELETE /meetings/:id
// @Summary      Delete a meeting
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=common.MessageResponse}
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id} [delete]
func (h *Meeting) DeleteMeeting(c echo.Context) error {
	meetingID, userID, err := h.meetingCall(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.meetingService.DeleteMeeting(c.Request().Context(), meetingID, userID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, common.MessageResponse{Message: "Meeting deleted"})
}

// ChangePhase handles PATCH /meetings/:id/phase
// @Summary      Change the meeting phase
// @Description  Moves the meeting to any phase. Finished closes it, anything else reopens or starts it (creator only).
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Meeting ID (UUID)"
// @Param        request  body      meeting.ChangePhaseRequest  true  "Target phase"
// @Success      200      {object}  common.SuccessResponse{data=meeting.MeetingResponse}
// @Failure      400      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Router       /meetings/{id}/phase [patch]
func (h *Meeting) ChangePhase(c echo.Context) error {
	meetingID, userID, err := h.meetingCall(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.ChangePhaseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.meetingService.ChangePhase(c.Request().Context(), meetingID, userID, entities.MeetingPhase(req.Phase))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(meeting))
}

// JoinMeeting handles POST /meetings/:id/join
// @Summary      Record durable presence (deprecated)
// @Description  Superseded by join_meeting on the realtime channel
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=meeting.MeetingResponse}
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id}/join [post]
// @Deprecated
func (h *Meeting) JoinMeeting(c echo.Context) error {
	meetingID, userID, err := h.meetingCall(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.meetingService.JoinMeeting(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(meeting))
}

// LeaveMeeting handles POST /meetings/:id/leave
// @Summary      Remove durable presence (deprecated)
// @Description  Superseded by leave_meeting on the realtime channel
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=meeting.MeetingResponse}
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id}/leave [post]
// @Deprecated
func (h *Meeting) LeaveMeeting(c echo.Context) error {
	meetingID, userID, err := h.meetingCall(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.meetingService.LeaveMeeting(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(meeting))
}
