package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/internal/adapter/dto/common"
	taskDTO "github.com/johnquangdev/meeting-quality/internal/adapter/dto/task"
	"github.com/johnquangdev/meeting-quality/internal/adapter/presenter"
	taskUsecase "github.com/johnquangdev/meeting-quality/internal/usecase/task"
)

// Task handles task HTTP requests
type Task struct {
	taskService taskUsecase.Service
	logger      *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService taskUsecase.Service, logger *zap.Logger) *Task {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Task{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks handles GET /tasks
// @Summary      List my tasks
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        filter  query     string  false  "current (open) or past (completed)"  Enums(current, past)
// @Success      200     {object}  common.SuccessResponse{data=task.ListTasksResponse}
// @Failure      400     {object}  common.ErrorResponse
// @Failure      401     {object}  common.ErrorResponse
// @Router       /tasks [get]
func (h *Task) ListTasks(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), userID, c.QueryParam("filter"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToListTasksResponse(tasks))
}

// GetTask handles GET /tasks/:id
// @Summary      Get one of my tasks
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=task.TaskResponse}
// @Failure      400  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /tasks/{id} [get]
func (h *Task) GetTask(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	taskID, err := parseTaskID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	task, err := h.taskService.GetTask(c.Request().Context(), taskID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToTaskResponse(task))
}

// CreateTask handles POST /tasks
// @Summary      Create a task
// @Description  Creates the caller's task for a meeting. Each participant has at most one task per meeting.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      task.CreateTaskRequest  true  "Task"
// @Success      201      {object}  common.SuccessResponse{data=task.TaskResponse}
// @Failure      400      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Failure      409      {object}  common.ErrorResponse  "Task already exists"
// @Router       /tasks [post]
func (h *Task) CreateTask(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), taskUsecase.CreateTaskInput{
		MeetingID:              req.MeetingID,
		UserID:                 userID,
		Description:            req.Description,
		CommonQuestion:         req.CommonQuestion,
		Deadline:               req.Deadline,
		ContributionImportance: *req.ContributionImportance,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccessWithStatus(h.logger, c, http.StatusCreated, presenter.ToTaskResponse(task))
}

// UpdateTask handles PATCH /tasks/:id
// @Summary      Update one of my tasks
// @Description  Approved tasks can no longer be changed
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Task ID (UUID)"
// @Param        request  body      task.UpdateTaskRequest  true  "Fields to change"
// @Success      200      {object}  common.SuccessResponse{data=task.TaskResponse}
// @Failure      400      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Router       /tasks/{id} [patch]
func (h *Task) UpdateTask(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	taskID, err := parseTaskID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.UpdateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), taskUsecase.UpdateTaskInput{
		TaskID:                 taskID,
		UserID:                 userID,
		Description:            req.Description,
		Deadline:               req.Deadline,
		ContributionImportance: req.ContributionImportance,
		IsCompleted:            req.IsCompleted,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToTaskResponse(task))
}

// DeleteTask handles DELETE /tasks/:id
// @Summary      Delete one of my tasks
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=common.MessageResponse}
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *Task) DeleteTask(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	taskID, err := parseTaskID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), taskID, userID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, common.MessageResponse{Message: "Task deleted"})
}

// ListMeetingTasks handles GET /tasks/meeting/:meetingId
// @Summary      List the tasks of a meeting
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        meetingId  path      string  true  "Meeting ID (UUID)"
// @Success      200        {object}  common.SuccessResponse{data=task.ListTasksResponse}
// @Failure      400        {object}  common.ErrorResponse
// @Failure      403        {object}  common.ErrorResponse
// @Failure      404        {object}  common.ErrorResponse
// @Router       /tasks/meeting/{meetingId} [get]
func (h *Task) ListMeetingTasks(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	meetingID, err := parseMeetingID(c, "meetingId")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	tasks, err := h.taskService.ListMeetingTasks(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToListTasksResponse(tasks))
}

// ApproveTask handles PATCH /tasks/:id/approve
// @Summary      Approve or unapprove a task
// @Description  Only the creator of the task's meeting may change approval
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Task ID (UUID)"
// @Param        request  body      task.ApproveTaskRequest  true  "Approval"
// @Success      200      {object}  common.SuccessResponse{data=task.ApprovalResponse}
// @Failure      400      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Router       /tasks/{id}/approve [patch]
func (h *Task) ApproveTask(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	taskID, err := parseTaskID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.ApproveTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.taskService.SetApproval(c.Request().Context(), taskID, userID, *req.Approved)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToApprovalResponse(result))
}
