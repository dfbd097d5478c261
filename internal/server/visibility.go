package server

import (
	"net/http"
	"strings"

	"github.com/davidlhotte/surfaced/internal/tenantcontext"
	visibilitydomain "github.com/davidlhotte/surfaced/internal/visibility/domain"
	"github.com/gin-gonic/gin"
)

type runVisibilityRequest struct {
	Queries []string `json:"queries"`
}

func (s *Server) RunVisibility(c *gin.Context) {
	tenantID, ok := tenantcontext.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req runVisibilityRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	queries := make([]string, 0, len(req.Queries))
	for _, q := range req.Queries {
		if trimmed := strings.TrimSpace(q); trimmed != "" {
			queries = append(queries, trimmed)
		}
	}

	summary, err := s.visibilitySvc.Run(c.Request.Context(), visibilitydomain.RunRequest{
		TenantID: tenantID,
		Queries:  queries,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (s *Server) ListVisibilityChecks(c *gin.Context) {
	var req visibilitydomain.ListChecksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.visibilitySvc.ListChecks(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
