package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/meeting-quality/pkg/config"
	pkgmiddleware "github.com/johnquangdev/meeting-quality/pkg/middleware"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	auth            echo.MiddlewareFunc
	meetingHandler  *Meeting
	taskHandler     *Task
	userHandler     *User
	realtimeHandler *Realtime
	startedAt       time.Time
}

// NewRouter creates a new router with all handlers. auth guards every REST route.
func NewRouter(
	cfg *config.Config,
	auth echo.MiddlewareFunc,
	meetingHandler *Meeting,
	taskHandler *Task,
	userHandler *User,
	realtimeHandler *Realtime,
) *Router {
	return &Router{
		cfg:             cfg,
		auth:            auth,
		meetingHandler:  meetingHandler,
		taskHandler:     taskHandler,
		userHandler:     userHandler,
		realtimeHandler: realtimeHandler,
		startedAt:       time.Now(),
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// The websocket authenticates during the handshake.
	e.GET("/ws", rt.realtimeHandler.Serve)

	rt.setupMeetingRoutes(e.Group("/meetings", rt.auth))
	rt.setupTaskRoutes(e.Group("/tasks", rt.auth))
	rt.setupUserRoutes(e.Group("/users", rt.auth))
}

// setupMeetingRoutes configures meeting, submission and analytics routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	h := rt.meetingHandler

	g.POST("", h.CreateMeeting)
	g.GET("", h.ListMeetings)
	g.GET("/:id", h.GetMeeting)
	g.PATCH("/:id", h.UpdateMeeting)
	g.DELETE("/:id", h.DeleteMeeting)
	g.PATCH("/:id/phase", h.ChangePhase)

	// Submissions
	g.POST("/:id/emotional-evaluations", h.SubmitEmotionalEvaluation)
	g.POST("/:id/understanding-contributions", h.SubmitUnderstandingContribution)
	g.POST("/:id/task-plannings", h.SubmitTaskPlanning)
	g.POST("/:id/task-evaluations", h.SubmitTaskEvaluation)

	// Analytics
	g.GET("/:id/active-participants", h.GetActiveParticipants)
	g.GET("/:id/voting-info", h.GetVotingInfo)
	g.GET("/:id/pending-voters", h.GetPendingVoters)
	g.GET("/:id/all-submissions", h.GetAllSubmissions)
	g.GET("/:id/phase-submissions", h.GetPhaseSubmissions)
	g.GET("/:id/statistics", h.GetStatistics)
	g.GET("/:id/task-evaluation-analytics", h.GetTaskEvaluationAnalytics)
	g.GET("/:id/final-stats", h.GetFinalStatistics)
	g.POST("/:id/final-stats/export", h.ExportFinalStatistics)

	// Durable presence, superseded by join_meeting/leave_meeting on /ws
	deprecated := pkgmiddleware.Deprecated("/ws", h.logger)
	g.POST("/:id/join", h.JoinMeeting, deprecated)
	g.POST("/:id/leave", h.LeaveMeeting, deprecated)
}

// setupTaskRoutes configures task routes
func (rt *Router) setupTaskRoutes(g *echo.Group) {
	h := rt.taskHandler

	g.GET("", h.ListTasks)
	g.POST("", h.CreateTask)
	g.GET("/meeting/:meetingId", h.ListMeetingTasks)
	g.GET("/:id", h.GetTask)
	g.PATCH("/:id", h.UpdateTask)
	g.DELETE("/:id", h.DeleteTask)
	g.PATCH("/:id/approve", h.ApproveTask)
}

// setupUserRoutes configures user directory routes
func (rt *Router) setupUserRoutes(g *echo.Group) {
	g.GET("", rt.userHandler.ListUsers)
}

// healthCheck returns health status
// @Summary      Health check
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
		"uptime":      time.Since(rt.startedAt).Round(time.Second).String(),
	})
}
