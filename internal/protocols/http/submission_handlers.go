package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"missionhub/pkg/models"
)

// maxUploadsPerSubmission bounds the files accepted in one request
const maxUploadsPerSubmission = 10

// bindSubmissionInput accepts either a JSON body or a multipart form with
// text_submission, answers (JSON), media_urls, removed_media_urls and media files
func (s *Server) bindSubmissionInput(c *gin.Context) (models.SubmissionInput, bool) {
	var in models.SubmissionInput

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if c.Request.ContentLength == 0 {
			return in, true
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request body")
			return in, false
		}
		return in, true
	}

	if perFile := s.config.Server.MaxUploadBytes; perFile > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, perFile*maxUploadsPerSubmission)
	}
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "invalid multipart form")
		return in, false
	}

	if v, ok := form.Value["text_submission"]; ok && len(v) > 0 {
		text := v[0]
		in.TextSubmission = &text
	}
	if v := form.Value["answers"]; len(v) > 0 && strings.TrimSpace(v[0]) != "" {
		if !json.Valid([]byte(v[0])) {
			badRequest(c, "answers must be valid JSON")
			return in, false
		}
		in.Answers = json.RawMessage(v[0])
	}
	in.MediaURLs = form.Value["media_urls"]
	in.RemovedMediaURLs = form.Value["removed_media_urls"]

	files := form.File["media"]
	if len(files) > maxUploadsPerSubmission {
		badRequest(c, "too many media files")
		return in, false
	}
	for _, fh := range files {
		in.Uploads = append(in.Uploads, uploadFrom(fh))
	}
	return in, true
}

func (s *Server) countSubmission(status models.SubmissionStatus) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.SubmissionsTotal.WithLabelValues(string(status)).Inc()
	}
}

func (s *Server) createSubmission(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	in, ok := s.bindSubmissionInput(c)
	if !ok {
		return
	}

	sub, err := s.svc.Submissions.Submit(c.Request.Context(), user, c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	s.countSubmission(sub.Status)
	respond(c, http.StatusCreated, "Submission received and pending review", sub)
}

// saveDraft serves POST /missions/:id/drafts (new draft) and PUT /drafts/:id
func (s *Server) saveDraft(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	in, ok := s.bindSubmissionInput(c)
	if !ok {
		return
	}

	var missionID, draftID string
	if c.Request.Method == http.MethodPut {
		draftID = c.Param("id")
	} else {
		missionID = c.Param("id")
	}

	draft, err := s.svc.Submissions.SaveDraft(c.Request.Context(), user, missionID, draftID, in)
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if draftID == "" {
		status = http.StatusCreated
	}
	respond(c, status, "Draft saved", draft)
}

func (s *Server) submitDraft(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	in, ok := s.bindSubmissionInput(c)
	if !ok {
		return
	}

	sub, err := s.svc.Submissions.SubmitDraft(c.Request.Context(), user, c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	s.countSubmission(sub.Status)
	respond(c, http.StatusOK, "Draft submitted for review", sub)
}

func (s *Server) deleteDraft(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	if err := s.svc.Submissions.DeleteDraft(c.Request.Context(), user, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Draft deleted", nil)
}

func (s *Server) updateSubmission(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	in, ok := s.bindSubmissionInput(c)
	if !ok {
		return
	}

	sub, wasApproved, err := s.svc.Submissions.Update(c.Request.Context(), user, c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}

	msg := "Submission updated"
	if wasApproved {
		msg = "Submission updated and sent back for review; points were reset"
	}
	respond(c, http.StatusOK, msg, sub)
}

func (s *Server) listMySubmissions(c *gin.Context) {
	userID, _ := GetUserID(c)
	subs, err := s.svc.Submissions.ListMine(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", subs)
}

// toggleLike flips the caller's like based on the state the client saw
func (s *Server) toggleLike(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	var req models.ToggleLikeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}

	resp, err := s.svc.Likes.Toggle(c.Request.Context(), user, c.Param("id"), req.CurrentlyLiked)
	if err != nil {
		s.countLike("rejected")
		appErr := models.ClassifyError(err)
		status := appErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		// like clients read the flat toggle shape on failure too
		c.JSON(status, models.ToggleLikeResponse{Success: false, Liked: req.CurrentlyLiked, Error: appErr.Message})
		return
	}

	if resp.Liked {
		s.countLike("liked")
	} else {
		s.countLike("unliked")
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) countLike(result string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.LikesTotal.WithLabelValues(result).Inc()
	}
}

func (s *Server) getLikeInfo(c *gin.Context) {
	viewerID, _ := GetUserID(c)
	info, err := s.svc.Likes.GetLikeInfo(c.Request.Context(), viewerID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", info)
}
