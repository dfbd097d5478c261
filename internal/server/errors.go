package server

import (
	"errors"
	"net/http"

	auditdomain "github.com/davidlhotte/surfaced/internal/audit/domain"
	auditlogdomain "github.com/davidlhotte/surfaced/internal/auditlog/domain"
	tenantdomain "github.com/davidlhotte/surfaced/internal/tenant/domain"
	visibilitydomain "github.com/davidlhotte/surfaced/internal/visibility/domain"
	"github.com/gin-gonic/gin"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, auditdomain.ErrInvalidTenant),
		errors.Is(err, visibilitydomain.ErrInvalidTenant),
		errors.Is(err, auditlogdomain.ErrInvalidTenant),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, visibilitydomain.ErrInvalidPageToken),
		errors.Is(err, auditlogdomain.ErrInvalidPageToken):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "invalid request",
		}
	case errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, auditdomain.ErrTenantNotFound),
		errors.Is(err, visibilitydomain.ErrTenantNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "tenant not found",
		}
	case errors.Is(err, visibilitydomain.ErrQuotaExceeded):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "quota_exceeded",
			Message: "monthly visibility check quota exhausted",
		}
	case errors.Is(err, visibilitydomain.ErrRunInProgress):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "a visibility run is already in progress",
		}
	case errors.Is(err, auditdomain.ErrCatalogFetch):
		return http.StatusBadGateway, errorPayload{
			Type:    "catalog_fetch_failed",
			Message: "catalog could not be fetched",
		}
	case errors.Is(err, visibilitydomain.ErrNoProviders):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "no answer engines configured",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
