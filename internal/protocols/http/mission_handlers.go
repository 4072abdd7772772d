package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"missionhub/pkg/models"
)

func (s *Server) listMissions(c *gin.Context) {
	missions, err := s.svc.Missions.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", missions)
}

func (s *Server) getMission(c *gin.Context) {
	mission, err := s.svc.Missions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", mission)
}

func (s *Server) createMission(c *gin.Context) {
	var req models.MissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	mission, err := s.svc.Missions.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Mission created", mission)
}

func (s *Server) updateMission(c *gin.Context) {
	var req models.MissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	mission, err := s.svc.Missions.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Mission updated", mission)
}

func (s *Server) deleteMission(c *gin.Context) {
	if err := s.svc.Missions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Mission deleted", nil)
}

func (s *Server) reorderMissions(c *gin.Context) {
	var order []models.MissionOrder
	if err := c.ShouldBindJSON(&order); err != nil {
		badRequest(c, "body must be a list of {id, display_order}")
		return
	}
	if err := s.svc.Missions.Reorder(c.Request.Context(), order); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Missions reordered", nil)
}
