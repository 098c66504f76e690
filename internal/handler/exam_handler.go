package handler

import (
	"net/http"

	"github.com/certlab/certprep-backend/internal/middleware"
	"github.com/certlab/certprep-backend/internal/model"
	"github.com/certlab/certprep-backend/internal/registry"
	"github.com/certlab/certprep-backend/internal/response"
	"github.com/certlab/certprep-backend/internal/service"
	"github.com/certlab/certprep-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExamHandler handles exam session lifecycle endpoints.
type ExamHandler struct {
	sessionService *service.ExamSessionService
	scoringService *service.ScoringService
	registry       *registry.Registry
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(
	sessionService *service.ExamSessionService,
	scoringService *service.ScoringService,
	reg *registry.Registry,
) *ExamHandler {
	return &ExamHandler{
		sessionService: sessionService,
		scoringService: scoringService,
		registry:       reg,
	}
}

// StartExam godoc
// POST /api/v1/exams
// Assembles a question set and creates a new in-progress session.
func (h *ExamHandler) StartExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.sessionService.StartExam(c.Request.Context(), claims.UserID(), &req)
	if err != nil {
		failFromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// GetSession godoc
// GET /api/v1/exams/sessions/:session_id
// Returns the session for the authenticated owner.
func (h *ExamHandler) GetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), claims.UserID(), sessionID)
	if err != nil {
		failFromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// SaveProgress godoc
// PUT /api/v1/exams/sessions/:session_id/progress
// Replaces the stored answers and review marks wholesale.
func (h *ExamHandler) SaveProgress(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SaveProgressRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.SaveProgress(c.Request.Context(), claims.UserID(), sessionID, &req)
	if err != nil {
		failFromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// SubmitExam godoc
// POST /api/v1/exams/sessions/:session_id/submit
// Scores the session synchronously and closes it.
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.scoringService.SubmitExam(c.Request.Context(), claims.UserID(), sessionID)
	if err != nil {
		failFromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetClock godoc
// GET /api/v1/exams/sessions/:session_id/clock
// Returns the remaining seconds on the session timer. Served from Redis so
// frequent countdown polls stay cheap.
func (h *ExamHandler) GetClock(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	remaining, err := h.sessionService.RemainingSeconds(c.Request.Context(), claims.UserID(), sessionID)
	if err != nil {
		failFromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"remaining_seconds": remaining})
}

// ListCertifications godoc
// GET /api/v1/certifications
// Returns the built-in certification catalog. Public, no auth required.
func (h *ExamHandler) ListCertifications(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"certifications": h.registry.Certifications()})
}
