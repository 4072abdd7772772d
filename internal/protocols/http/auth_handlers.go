package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"missionhub/pkg/models"
)

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	profile, err := s.svc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Profile registered successfully", gin.H{"profile": profile.Public()})
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	resp, err := s.svc.Auth.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", resp)
}

func (s *Server) getMe(c *gin.Context) {
	userID, _ := GetUserID(c)
	view, err := s.svc.Profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", view)
}

// updateUserRole lets admins promote or restrict a profile
func (s *Server) updateUserRole(c *gin.Context) {
	var req models.RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if !req.Role.Valid() {
		badRequest(c, fmt.Sprintf("invalid role %q: must be admin, participant or view_only", req.Role))
		return
	}

	id := c.Param("id")
	if me, _ := GetUserID(c); me == id && req.Role != models.RoleAdmin {
		badRequest(c, "admins cannot demote themselves")
		return
	}

	if err := s.svc.Auth.UpdateRole(c.Request.Context(), id, req.Role); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Role updated", gin.H{"id": id, "role": req.Role})
}

func (s *Server) listUsers(c *gin.Context) {
	page, err := s.svc.Profiles.ListProfiles(c.Request.Context(), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", page)
}

func (s *Server) deleteUser(c *gin.Context) {
	id := c.Param("id")
	if me, _ := GetUserID(c); me == id {
		badRequest(c, "admins cannot delete themselves")
		return
	}
	if err := s.svc.Profiles.DeleteProfile(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile deleted", nil)
}
