package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missionhub/internal/likes"
	"missionhub/pkg/models"
)

func envelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{Success: status < 300, Data: data, Timestamp: time.Now()}
	if status >= 300 {
		resp.Error = models.ErrCodeNotFound
		resp.Message = "profile not found"
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret-pass" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(models.APIResponse{Error: models.ErrCodeUnauthorized, Message: "invalid email or password"})
			return
		}
		envelope(w, http.StatusOK, models.LoginResponse{Token: "tok-1", Profile: models.PublicProfile{ID: "u1", Name: "Ada"}})
	})

	mux.HandleFunc("/api/v1/activity", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		envelope(w, http.StatusOK, models.ActivityFeed{
			Entries: []models.ActivityFeedEntry{{ID: "s1", Kind: models.FeedKindSubmission, ChangedFields: []string{}}},
			Likes:   map[string]models.LikeInfo{"s1": {Count: 2, Liked: true}},
		})
	})

	mux.HandleFunc("/api/v1/profiles/ghost/rank", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusNotFound, nil)
	})

	mux.HandleFunc("/api/v1/submissions/s1/like", func(w http.ResponseWriter, r *http.Request) {
		var req models.ToggleLikeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(models.ToggleLikeResponse{Success: true, Liked: !req.CurrentlyLiked, Count: 3})
	})
	mux.HandleFunc("/api/v1/submissions/pending/like", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(models.ToggleLikeResponse{Success: false, Error: "only approved submissions can be liked"})
	})

	mux.HandleFunc("/api/v1/admin/submissions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		envelope(w, http.StatusOK, models.PaginatedResponse[models.SubmissionDetail]{
			Data: []models.SubmissionDetail{{Submission: models.Submission{ID: "s9", Status: models.StatusPending}}},
			Meta: models.NewPaginationMeta(1, 50, 0),
		})
	})

	mux.HandleFunc("/api/v1/admin/users/u2/role", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var req models.RoleUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.RoleViewOnly, req.Role)
		envelope(w, http.StatusOK, map[string]string{"id": "u2", "role": string(req.Role)})
	})

	upgrader := websocket.Upgrader{}
	mux.HandleFunc("/ws/activity", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-1", r.URL.Query().Get("token"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(StreamEvent{Type: "hello"})
		_ = conn.WriteJSON(StreamEvent{Type: "activity_changed", Reason: "submission_reviewed"})
		time.Sleep(100 * time.Millisecond)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginAndFeed(t *testing.T) {
	srv := newTestAPI(t)
	c := New(srv.URL + "/")
	ctx := context.Background()

	_, err := c.Login(ctx, "ada@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Contains(t, err.Error(), "invalid email or password")

	login, err := c.Login(ctx, "ada@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", login.Token)
	assert.Equal(t, "tok-1", c.Token())
	assert.Equal(t, "u1", c.UserID())

	feed, err := c.Feed(ctx, 5)
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, models.LikeInfo{Count: 2, Liked: true}, feed.Likes["s1"])
}

func TestRankNotFound(t *testing.T) {
	srv := newTestAPI(t)
	_, err := New(srv.URL).Rank(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestToggleLikeAndCommitter(t *testing.T) {
	srv := newTestAPI(t)
	c := New(srv.URL)
	ctx := context.Background()

	resp, err := c.ToggleLike(ctx, "s1", false)
	require.NoError(t, err)
	assert.Equal(t, &models.ToggleLikeResponse{Success: true, Liked: true, Count: 3}, resp)

	_, err = c.ToggleLike(ctx, "pending", false)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.Contains(t, err.Error(), "only approved")

	coord := likes.New("s1", false, 2, c.LikeCommitter())
	out, ok := coord.Toggle(ctx)
	require.True(t, ok)
	select {
	case o := <-out:
		require.NoError(t, o.Err)
		assert.Equal(t, likes.State{Liked: true, Count: 3}, o.State)
	case <-time.After(2 * time.Second):
		t.Fatal("toggle did not complete")
	}
}

func TestReviewQueue(t *testing.T) {
	srv := newTestAPI(t)
	page, err := New(srv.URL).ReviewQueue(context.Background(), models.StatusPending, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "s9", page.Data[0].ID)
}

func TestUpdateRole(t *testing.T) {
	srv := newTestAPI(t)
	require.NoError(t, New(srv.URL).UpdateRole(context.Background(), "u2", models.RoleViewOnly))
}

func TestActivityStreamURL(t *testing.T) {
	c := New("https://hub.example.com/base/")
	c.SetToken("a b")
	u, err := c.ActivityStreamURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://hub.example.com/base/ws/activity?token=a+b", u)

	u, err = New("http://localhost:8080").ActivityStreamURL()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws/activity", u)
}

func TestSubscribeActivity(t *testing.T) {
	srv := newTestAPI(t)
	c := New(srv.URL)
	c.SetToken("tok-1")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := c.SubscribeActivity(ctx)
	require.NoError(t, err)

	ev, ok := <-events
	require.True(t, ok)
	assert.Equal(t, "submission_reviewed", ev.Reason)

	// the server hangs up after its two messages
	for range events {
	}
}
