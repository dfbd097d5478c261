package server

import (
	"net/http"
	"strings"

	auditlogdomain "github.com/davidlhotte/surfaced/internal/auditlog/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListActivity(c *gin.Context) {
	var req auditlogdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.Action = strings.TrimSpace(c.Query("action"))

	resp, err := s.auditLogSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
