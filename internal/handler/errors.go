package handler

import (
	"errors"
	"net/http"

	"github.com/certlab/certprep-backend/internal/response"
	"github.com/certlab/certprep-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// failFromServiceError maps a service-layer error onto the response taxonomy.
// Unknown errors surface as a generic 500 so internals never leak.
func failFromServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	case errors.Is(err, service.ErrUnknownCertification):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownCertification)
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrResultNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrDuplicateSession):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrSessionNotActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, service.ErrSessionExpired):
		response.Fail(c, http.StatusGone, response.ErrSessionExpired)
	case errors.Is(err, service.ErrNoScoringConfig):
		response.Fail(c, http.StatusInternalServerError, response.ErrConfigMissing)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
