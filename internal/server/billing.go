package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) BillingStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.sched.Status()})
}

// TriggerBillingRun runs one due-check synchronously. It reuses the scheduler's
// tick path, so operators exercise the same batching logic the timer does.
func (s *Server) TriggerBillingRun(c *gin.Context) {
	if err := s.sched.RunOnce(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s.sched.Status()})
}

func (s *Server) StartBilling(c *gin.Context) {
	s.sched.Start()
	c.JSON(http.StatusOK, gin.H{"data": s.sched.Status()})
}

func (s *Server) StopBilling(c *gin.Context) {
	s.sched.Stop()
	c.JSON(http.StatusOK, gin.H{"data": s.sched.Status()})
}
