package http

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"missionhub/pkg/models"
)

// getCommunityFeed returns the merged feed; like state is personalised when
// the caller is authenticated
func (s *Server) getCommunityFeed(c *gin.Context) {
	viewerID, _ := GetUserID(c)
	feed, err := s.svc.Activity.CommunityFeed(c.Request.Context(), viewerID, queryInt(c, "limit", 0))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", feed)
}

func (s *Server) getLeaderboard(c *gin.Context) {
	page, err := s.svc.Leaderboard.Leaderboard(c.Request.Context(), queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", page)
}

func (s *Server) getProfile(c *gin.Context) {
	view, err := s.svc.Profiles.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", view)
}

func (s *Server) getProfileRank(c *gin.Context) {
	rank, err := s.svc.Leaderboard.UserRank(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", rank)
}

func (s *Server) updateMyProfile(c *gin.Context) {
	var patch models.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	userID, _ := GetUserID(c)
	changed, err := s.svc.Profiles.UpdateProfile(c.Request.Context(), userID, patch)
	if err != nil {
		fail(c, err)
		return
	}

	view, err := s.svc.Profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated", gin.H{
		"profile":        view,
		"changed_fields": changed,
	})
}

func (s *Server) updateMyAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		badRequest(c, "avatar file is required")
		return
	}

	userID, _ := GetUserID(c)
	profile, err := s.svc.Profiles.UpdateAvatar(c.Request.Context(), userID, uploadFrom(fh))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Avatar updated", profile)
}

// uploadFrom adapts a multipart file header to a models.Upload
func uploadFrom(fh *multipart.FileHeader) models.Upload {
	return models.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadSeekCloser, error) {
			return fh.Open()
		},
	}
}
