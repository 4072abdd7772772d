package http

import (
	"context"
	"io"
	"sync"

	"missionhub/pkg/models"
)

var (
	adminProfile  = &models.Profile{ID: "admin-1", Name: "Admin", Role: models.RoleAdmin}
	memberProfile = &models.Profile{ID: "user-1", Name: "Member", Role: models.RoleParticipant}
	viewerProfile = &models.Profile{ID: "viewer-1", Name: "Viewer", Role: models.RoleViewOnly}
)

type fakeAuth struct {
	mu    sync.Mutex
	roles map[string]models.Role
}

func (f *fakeAuth) Register(_ context.Context, req models.RegisterRequest) (*models.Profile, error) {
	if req.Email == "taken@example.com" {
		return nil, models.ErrEmailExists
	}
	return &models.Profile{ID: "new-1", Name: req.Name, Email: req.Email, Role: models.RoleParticipant}, nil
}

func (f *fakeAuth) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "correct-horse" {
		return nil, models.ErrInvalidCredentials
	}
	return &models.LoginResponse{Token: "user-token", Profile: memberProfile.Public(), ExpiresIn: 3600}, nil
}

func (f *fakeAuth) ValidateToken(_ context.Context, token string) (*models.Profile, error) {
	switch token {
	case "admin-token":
		return adminProfile, nil
	case "user-token":
		return memberProfile, nil
	case "viewer-token":
		return viewerProfile, nil
	}
	return nil, models.ErrInvalidToken
}

func (f *fakeAuth) UpdateRole(_ context.Context, id string, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == "missing" {
		return models.ErrProfileNotFound
	}
	if f.roles == nil {
		f.roles = map[string]models.Role{}
	}
	f.roles[id] = role
	return nil
}

type fakeProfiles struct {
	patches []models.ProfilePatch
	avatar  []byte
}

func (f *fakeProfiles) GetProfile(_ context.Context, id string) (*models.ProfileView, error) {
	if id == "missing" {
		return nil, models.ErrProfileNotFound
	}
	return &models.ProfileView{Profile: models.Profile{ID: id, Name: "Member"}, Rank: 2, Ranked: true}, nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, _ string, patch models.ProfilePatch) ([]string, error) {
	f.patches = append(f.patches, patch)
	if patch.Bio != nil {
		return []string{"bio"}, nil
	}
	return []string{}, nil
}

func (f *fakeProfiles) UpdateAvatar(_ context.Context, id string, up models.Upload) (*models.Profile, error) {
	r, err := up.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if f.avatar, err = io.ReadAll(r); err != nil {
		return nil, err
	}
	url := "https://cdn.test/" + up.Filename
	return &models.Profile{ID: id, AvatarURL: &url}, nil
}

func (f *fakeProfiles) ListProfiles(_ context.Context, limit, offset int) (*models.PaginatedResponse[models.Profile], error) {
	return &models.PaginatedResponse[models.Profile]{
		Data: []models.Profile{*memberProfile},
		Meta: models.NewPaginationMeta(1, limit, offset),
	}, nil
}

func (f *fakeProfiles) DeleteProfile(_ context.Context, id string) error {
	if id == "missing" {
		return models.ErrProfileNotFound
	}
	return nil
}

type fakeMissions struct {
	order []models.MissionOrder
}

func (f *fakeMissions) List(context.Context) ([]models.Mission, error) {
	return []models.Mission{{ID: "m1", Title: "Say hello", PointsValue: 10}}, nil
}

func (f *fakeMissions) Get(_ context.Context, id string) (*models.Mission, error) {
	if id != "m1" {
		return nil, models.ErrMissionNotFound
	}
	return &models.Mission{ID: "m1", Title: "Say hello", PointsValue: 10}, nil
}

func (f *fakeMissions) Create(_ context.Context, req models.MissionRequest) (*models.Mission, error) {
	if err := models.ValidateMissionRequest(&req); err != nil {
		return nil, models.ErrInvalidInput
	}
	m := &models.Mission{ID: "m2"}
	req.ApplyTo(m)
	return m, nil
}

func (f *fakeMissions) Update(ctx context.Context, id string, req models.MissionRequest) (*models.Mission, error) {
	m, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.ApplyTo(m)
	return m, nil
}

func (f *fakeMissions) Delete(ctx context.Context, id string) error {
	_, err := f.Get(ctx, id)
	return err
}

func (f *fakeMissions) Reorder(_ context.Context, order []models.MissionOrder) error {
	if len(order) == 0 {
		return models.ErrInvalidInput
	}
	f.order = order
	return nil
}

type fakeSubmissions struct {
	mu     sync.Mutex
	inputs []models.SubmissionInput
	bodies map[string][]byte
	drafts []string
}

func (f *fakeSubmissions) record(in models.SubmissionInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	for _, up := range in.Uploads {
		r, err := up.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return err
		}
		if f.bodies == nil {
			f.bodies = map[string][]byte{}
		}
		f.bodies[up.Filename] = data
	}
	return nil
}

func (f *fakeSubmissions) last() models.SubmissionInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputs[len(f.inputs)-1]
}

func (f *fakeSubmissions) Submit(_ context.Context, actor *models.Profile, missionID string, in models.SubmissionInput) (*models.Submission, error) {
	if !actor.CanSubmit() {
		return nil, models.ErrForbidden
	}
	if missionID == "full" {
		return nil, models.ErrSubmissionLimit
	}
	if err := f.record(in); err != nil {
		return nil, err
	}
	return &models.Submission{ID: "s1", UserID: actor.ID, MissionID: missionID, Status: models.StatusPending}, nil
}

func (f *fakeSubmissions) SaveDraft(_ context.Context, actor *models.Profile, missionID, draftID string, in models.SubmissionInput) (*models.Submission, error) {
	if err := f.record(in); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.drafts = append(f.drafts, missionID+"|"+draftID)
	f.mu.Unlock()
	id := draftID
	if id == "" {
		id = "d1"
	}
	return &models.Submission{ID: id, UserID: actor.ID, MissionID: missionID, Status: models.StatusDraft}, nil
}

func (f *fakeSubmissions) SubmitDraft(_ context.Context, actor *models.Profile, draftID string, in models.SubmissionInput) (*models.Submission, error) {
	if err := f.record(in); err != nil {
		return nil, err
	}
	return &models.Submission{ID: draftID, UserID: actor.ID, Status: models.StatusPending}, nil
}

func (f *fakeSubmissions) DeleteDraft(_ context.Context, _ *models.Profile, draftID string) error {
	if draftID == "missing" {
		return models.ErrSubmissionNotFound
	}
	return nil
}

func (f *fakeSubmissions) Update(_ context.Context, actor *models.Profile, id string, in models.SubmissionInput) (*models.Submission, bool, error) {
	if err := f.record(in); err != nil {
		return nil, false, err
	}
	return &models.Submission{ID: id, UserID: actor.ID, Status: models.StatusPending}, id == "approved-1", nil
}

func (f *fakeSubmissions) ListMine(_ context.Context, userID string) ([]models.Submission, error) {
	return []models.Submission{{ID: "s1", UserID: userID, Status: models.StatusPending}}, nil
}

func (f *fakeSubmissions) ListForReview(_ context.Context, status models.SubmissionStatus, limit, offset int) (*models.PaginatedResponse[models.SubmissionDetail], error) {
	if !status.Valid() || status == models.StatusDraft {
		return nil, models.ErrInvalidInput
	}
	d := models.SubmissionDetail{Submission: models.Submission{ID: "s1", Status: status}, UserName: "Member", MissionTitle: "Say hello"}
	return &models.PaginatedResponse[models.SubmissionDetail]{
		Data: []models.SubmissionDetail{d},
		Meta: models.NewPaginationMeta(1, limit, offset),
	}, nil
}

func (f *fakeSubmissions) Review(_ context.Context, id string, req models.ReviewRequest) (*models.Submission, error) {
	if req.Status == models.StatusDraft {
		return nil, models.ErrInvalidTransition
	}
	points := 0
	if req.Status == models.StatusApproved {
		points = 10
		if req.PointsAwarded != nil {
			points = *req.PointsAwarded
		}
	}
	return &models.Submission{ID: id, Status: req.Status, PointsAwarded: points, AdminFeedback: req.AdminFeedback}, nil
}

func (f *fakeSubmissions) Delete(_ context.Context, id string) error {
	if id == "missing" {
		return models.ErrSubmissionNotFound
	}
	return nil
}

type fakeLikes struct {
	mu    sync.Mutex
	liked map[string]bool
}

func (f *fakeLikes) Toggle(_ context.Context, actor *models.Profile, id string, currentlyLiked bool) (*models.ToggleLikeResponse, error) {
	if !actor.CanSubmit() {
		return nil, models.ErrForbidden
	}
	if id == "pending-1" {
		return nil, models.ErrNotLikeable
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.liked == nil {
		f.liked = map[string]bool{}
	}
	key := actor.ID + "|" + id
	f.liked[key] = !currentlyLiked
	count := 0
	if f.liked[key] {
		count = 1
	}
	return &models.ToggleLikeResponse{Success: true, Liked: f.liked[key], Count: count}, nil
}

func (f *fakeLikes) GetLikeInfo(_ context.Context, viewerID, id string) (*models.LikeInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	liked := f.liked[viewerID+"|"+id]
	count := 0
	if liked {
		count = 1
	}
	return &models.LikeInfo{Count: count, Liked: liked}, nil
}

type fakeActivity struct {
	mu      sync.Mutex
	viewers []string
	limits  []int
}

func (f *fakeActivity) ActivityChanged(context.Context, string) {}

func (f *fakeActivity) CommunityFeed(_ context.Context, viewerID string, limit int) (*models.ActivityFeed, error) {
	f.mu.Lock()
	f.viewers = append(f.viewers, viewerID)
	f.limits = append(f.limits, limit)
	f.mu.Unlock()

	return &models.ActivityFeed{
		Entries: []models.ActivityFeedEntry{{ID: "s1", Kind: models.FeedKindSubmission, UserName: "Member", MissionTitle: "Say hello", ChangedFields: []string{}}},
		Likes:   map[string]models.LikeInfo{"s1": {Count: 3, Liked: viewerID != ""}},
	}, nil
}

type fakeLeaderboard struct{}

func (fakeLeaderboard) ActivityChanged(context.Context, string) {}

func (fakeLeaderboard) Leaderboard(_ context.Context, limit, offset int) (*models.PaginatedResponse[models.LeaderboardEntry], error) {
	return &models.PaginatedResponse[models.LeaderboardEntry]{
		Data: []models.LeaderboardEntry{{ID: "user-1", Name: "Member", TotalPoints: 30, Rank: offset + 1}},
		Meta: models.NewPaginationMeta(1, limit, offset),
	}, nil
}

func (fakeLeaderboard) UserRank(_ context.Context, id string) (*models.RankResponse, error) {
	if id == "missing" {
		return nil, models.ErrProfileNotFound
	}
	return &models.RankResponse{ProfileID: id, Rank: 1, Ranked: true, TotalPoints: 30, Of: 1}, nil
}
