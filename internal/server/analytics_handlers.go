package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flowchain/flowchain/internal/analytics"
)

// Analytics endpoints share one filter vocabulary so the UI can hit them in
// parallel with the same query string.

func (s *Server) criteria(c *gin.Context) analytics.Criteria {
	return analytics.ParseCriteria(c.Request.URL.Query())
}

func (s *Server) analyticsKPIs(c *gin.Context) {
	kpis, err := s.engine.KPIs(s.criteria(c))
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

func (s *Server) analyticsProjectCosts(c *gin.Context) {
	costs, err := s.engine.ProjectCosts(s.criteria(c))
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, costs)
}

func (s *Server) analyticsResourceUtilization(c *gin.Context) {
	points, err := s.engine.ResourceUtilization(s.criteria(c))
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) analyticsCompletion(c *gin.Context) {
	points, err := s.engine.ProjectCompletion(s.criteria(c))
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) analyticsWorkloadTrend(c *gin.Context) {
	points, err := s.engine.WorkloadTrend(s.criteria(c))
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) analyticsRevenueExpense(c *gin.Context) {
	points, err := s.engine.RevenueExpenseTrend(s.criteria(c))
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) analyticsTaskStatus(c *gin.Context) {
	counts, err := s.engine.TaskStatusDistribution(s.criteria(c))
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (s *Server) analyticsFilters(c *gin.Context) {
	options, err := s.engine.FilterOptions()
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, options)
}
