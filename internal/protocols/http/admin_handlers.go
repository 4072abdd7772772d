package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"missionhub/pkg/models"
)

// listSubmissionsForReview defaults to the pending queue
func (s *Server) listSubmissionsForReview(c *gin.Context) {
	status := models.SubmissionStatus(c.DefaultQuery("status", string(models.StatusPending)))
	page, err := s.svc.Submissions.ListForReview(c.Request.Context(), status, queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", page)
}

func (s *Server) reviewSubmission(c *gin.Context) {
	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	sub, err := s.svc.Submissions.Review(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.ReviewsTotal.WithLabelValues(string(sub.Status)).Inc()
	}
	respond(c, http.StatusOK, "Submission reviewed", sub)
}

func (s *Server) deleteSubmission(c *gin.Context) {
	if err := s.svc.Submissions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Submission deleted", nil)
}
