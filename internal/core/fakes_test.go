package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"missionhub/pkg/models"
)

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
	order    []string
	seq      int
}

func newFakeProfileRepo(profiles ...*models.Profile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: map[string]*models.Profile{}}
	for _, p := range profiles {
		cp := *p
		r.profiles[p.ID] = &cp
		r.order = append(r.order, p.ID)
	}
	return r
}

func (r *fakeProfileRepo) Create(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.profiles {
		if existing.Email == p.Email {
			return models.ErrConflict
		}
	}
	if p.ID == "" {
		r.seq++
		p.ID = fmt.Sprintf("profile-%d", r.seq)
	}
	cp := *p
	r.profiles[p.ID] = &cp
	r.order = append(r.order, p.ID)
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == email && !p.IsDeleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.ErrProfileNotFound
}

func (r *fakeProfileRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProfileRepo) Update(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; !ok {
		return models.ErrProfileNotFound
	}
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) UpdateRole(_ context.Context, id string, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return models.ErrProfileNotFound
	}
	p.Role = role
	return nil
}

func (r *fakeProfileRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return models.ErrProfileNotFound
	}
	p.IsDeleted = true
	return nil
}

func (r *fakeProfileRepo) List(_ context.Context, limit, offset int) ([]models.Profile, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]models.Profile, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, *r.profiles[id])
	}
	return page(all, limit, offset), len(all), nil
}

func (r *fakeProfileRepo) sorted() []models.Profile {
	all := make([]models.Profile, 0, len(r.order))
	for _, id := range r.order {
		if p := r.profiles[id]; !p.IsDeleted {
			all = append(all, *p)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].TotalPoints > all[j].TotalPoints })
	return all
}

func (r *fakeProfileRepo) ListByPoints(_ context.Context, limit, offset int) ([]models.LeaderboardEntry, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted()
	entries := make([]models.LeaderboardEntry, 0, len(all))
	for _, p := range all {
		entries = append(entries, models.LeaderboardEntry{ID: p.ID, Name: p.Name, TotalPoints: p.TotalPoints})
	}
	return page(entries, limit, offset), len(entries), nil
}

func (r *fakeProfileRepo) AllPoints(_ context.Context) ([]models.RankedPoints, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RankedPoints
	for _, p := range r.sorted() {
		out = append(out, models.RankedPoints{ID: p.ID, TotalPoints: p.TotalPoints})
	}
	return out, nil
}

func (r *fakeProfileRepo) RecalculatePoints(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return 0, models.ErrProfileNotFound
	}
	return p.TotalPoints, nil
}

func (r *fakeProfileRepo) ApprovedCount(_ context.Context, _ string) (int, error) {
	return 3, nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

type fakeActivityRepo struct {
	mu        sync.Mutex
	subs      []models.SubmissionEvent
	changes   []models.ProfileChangeEvent
	subErr    error
	changeErr error
	panicSubs bool
	recordErr error
	recorded  []models.ProfileActivity
	subCalls  int
	// delay makes the submission source slower than the profile source
	delay time.Duration
}

func (r *fakeActivityRepo) RecentApprovedSubmissions(ctx context.Context, limit int) ([]models.SubmissionEvent, error) {
	r.mu.Lock()
	r.subCalls++
	r.mu.Unlock()
	if r.panicSubs {
		panic("boom")
	}
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.subErr != nil {
		return nil, r.subErr
	}
	if limit < len(r.subs) {
		return r.subs[:limit], nil
	}
	return r.subs, nil
}

func (r *fakeActivityRepo) RecentProfileChanges(_ context.Context, limit int) ([]models.ProfileChangeEvent, error) {
	if r.changeErr != nil {
		return nil, r.changeErr
	}
	if limit < len(r.changes) {
		return r.changes[:limit], nil
	}
	return r.changes, nil
}

func (r *fakeActivityRepo) RecordProfileChange(_ context.Context, a *models.ProfileActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recordErr != nil {
		return r.recordErr
	}
	r.recorded = append(r.recorded, *a)
	return nil
}

type fakeLikeRepo struct {
	mu    sync.Mutex
	likes map[string]map[string]bool
	err   error
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: map[string]map[string]bool{}}
}

func (r *fakeLikeRepo) Add(_ context.Context, userID, submissionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	if r.likes[submissionID] == nil {
		r.likes[submissionID] = map[string]bool{}
	}
	if r.likes[submissionID][userID] {
		return false, nil
	}
	r.likes[submissionID][userID] = true
	return true, nil
}

func (r *fakeLikeRepo) Remove(_ context.Context, userID, submissionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	if !r.likes[submissionID][userID] {
		return false, nil
	}
	delete(r.likes[submissionID], userID)
	return true, nil
}

func (r *fakeLikeRepo) Count(_ context.Context, submissionID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.likes[submissionID]), nil
}

func (r *fakeLikeRepo) HasLiked(_ context.Context, userID, submissionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.likes[submissionID][userID], nil
}

func (r *fakeLikeRepo) CountsFor(_ context.Context, ids []string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := map[string]int{}
	for _, id := range ids {
		if n := len(r.likes[id]); n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func (r *fakeLikeRepo) LikedBy(_ context.Context, userID string, ids []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]bool{}
	for _, id := range ids {
		if r.likes[id][userID] {
			out[id] = true
		}
	}
	return out, nil
}

type fakeMissionRepo struct {
	missions map[string]*models.Mission
	order    []models.MissionOrder
}

func newFakeMissionRepo(missions ...*models.Mission) *fakeMissionRepo {
	r := &fakeMissionRepo{missions: map[string]*models.Mission{}}
	for _, m := range missions {
		cp := *m
		r.missions[m.ID] = &cp
	}
	return r
}

func (r *fakeMissionRepo) Create(_ context.Context, m *models.Mission) error {
	if m.ID == "" {
		m.ID = fmt.Sprintf("mission-%d", len(r.missions)+1)
	}
	cp := *m
	r.missions[m.ID] = &cp
	return nil
}

func (r *fakeMissionRepo) GetByID(_ context.Context, id string) (*models.Mission, error) {
	m, ok := r.missions[id]
	if !ok {
		return nil, models.ErrMissionNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMissionRepo) List(_ context.Context) ([]models.Mission, error) {
	out := make([]models.Mission, 0, len(r.missions))
	for _, m := range r.missions {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMissionRepo) Update(_ context.Context, m *models.Mission) error {
	if _, ok := r.missions[m.ID]; !ok {
		return models.ErrMissionNotFound
	}
	cp := *m
	r.missions[m.ID] = &cp
	return nil
}

func (r *fakeMissionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.missions[id]; !ok {
		return models.ErrMissionNotFound
	}
	delete(r.missions, id)
	return nil
}

func (r *fakeMissionRepo) UpdateOrder(_ context.Context, order []models.MissionOrder) error {
	for _, o := range order {
		if _, ok := r.missions[o.ID]; !ok {
			return models.ErrMissionNotFound
		}
	}
	r.order = order
	return nil
}

type fakeSubmissionRepo struct {
	subs map[string]*models.Submission
	seq  int
}

func newFakeSubmissionRepo(subs ...*models.Submission) *fakeSubmissionRepo {
	r := &fakeSubmissionRepo{subs: map[string]*models.Submission{}}
	for _, s := range subs {
		cp := *s
		r.subs[s.ID] = &cp
	}
	return r
}

func (r *fakeSubmissionRepo) Create(_ context.Context, s *models.Submission) error {
	if s.ID == "" {
		r.seq++
		s.ID = fmt.Sprintf("sub-new-%d", r.seq)
	}
	cp := *s
	r.subs[s.ID] = &cp
	return nil
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, id string) (*models.Submission, error) {
	s, ok := r.subs[id]
	if !ok {
		return nil, models.ErrSubmissionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubmissionRepo) Update(_ context.Context, s *models.Submission) error {
	if _, ok := r.subs[s.ID]; !ok {
		return models.ErrSubmissionNotFound
	}
	cp := *s
	r.subs[s.ID] = &cp
	return nil
}

func (r *fakeSubmissionRepo) ListForReview(_ context.Context, status models.SubmissionStatus, limit, offset int) ([]models.SubmissionDetail, int, error) {
	var out []models.SubmissionDetail
	for _, s := range r.subs {
		if (status == "" && s.Status != models.StatusDraft) || s.Status == status {
			out = append(out, models.SubmissionDetail{Submission: *s})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), len(out), nil
}

func (r *fakeSubmissionRepo) ListByUser(_ context.Context, userID string) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) UpdateStatus(_ context.Context, id string, status models.SubmissionStatus, points int, feedback *string) (*models.Submission, error) {
	s, ok := r.subs[id]
	if !ok {
		return nil, models.ErrSubmissionNotFound
	}
	s.Status = status
	s.PointsAwarded = points
	if feedback != nil {
		s.AdminFeedback = feedback
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubmissionRepo) Delete(_ context.Context, id string) (*models.Submission, error) {
	s, ok := r.subs[id]
	if !ok {
		return nil, models.ErrSubmissionNotFound
	}
	delete(r.subs, id)
	return s, nil
}

func (r *fakeSubmissionRepo) CountByUserMission(_ context.Context, userID, missionID string) (int, error) {
	n := 0
	for _, s := range r.subs {
		if s.UserID == userID && s.MissionID == missionID && s.Status != models.StatusDraft {
			n++
		}
	}
	return n, nil
}

type fakeUploader struct {
	err     error
	uploads []string
}

func (u *fakeUploader) Upload(_ context.Context, userID string, up models.Upload) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	url := "https://cdn.test/" + userID + "/" + up.Filename
	u.uploads = append(u.uploads, url)
	return url, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	reasons []string
}

func (n *recordingNotifier) ActivityChanged(_ context.Context, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reasons = append(n.reasons, reason)
}

func (n *recordingNotifier) seen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.reasons...)
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
