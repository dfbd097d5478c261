package server

import (
	"net/http"
	"strings"

	"github.com/davidlhotte/surfaced/internal/plan"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetPlan(c *gin.Context) {
	tier := plan.Tier(strings.ToLower(strings.TrimSpace(c.Param("tier"))))
	limits := s.planSvc.LimitsFor(tier)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"tier":   tier,
		"limits": limits,
	}})
}
