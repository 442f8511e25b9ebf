// routes_runs.go - Handler fuer Trainings-Runs
// Beinhaltet: HealthHandler, ListRunsHandler, ShowRunHandler, DeleteRunHandler
package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ovdet/ovdet/api"
)

// HealthHandler meldet den Zustand von Server und Store
func (s *Server) HealthHandler(c *gin.Context) {
	if _, err := s.st.ListRuns(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListRunsHandler gibt alle Runs zurueck
func (s *Server) ListRunsHandler(c *gin.Context) {
	runs, err := s.st.ListRuns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, api.ListRunsResponse{Runs: runs})
}

// ShowRunHandler gibt einen Run mit Epochen-Kennzahlen zurueck
func (s *Server) ShowRunHandler(c *gin.Context) {
	run, metrics, err := s.st.GetRun(c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, api.ShowRunResponse{Run: *run, Metrics: metrics})
}

// DeleteRunHandler loescht einen Run
func (s *Server) DeleteRunHandler(c *gin.Context) {
	if err := s.st.DeleteRun(c.Param("id")); err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
