package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"missionhub/internal/core"
	"missionhub/internal/metrics"
	"missionhub/pkg/config"
	"missionhub/pkg/logger"
)

// Services groups the domain services the API exposes
type Services struct {
	Auth        core.AuthService
	Profiles    core.ProfileService
	Missions    core.MissionService
	Submissions core.SubmissionService
	Likes       core.LikeService
	Activity    core.ActivityService
	Leaderboard core.LeaderboardService
}

// Options carries the optional collaborators of the server
type Options struct {
	Metrics *metrics.Metrics
	// WebSocket serves GET /ws/activity when set
	WebSocket gin.HandlerFunc
	// HealthCheck reports dependency health for GET /health
	HealthCheck func(ctx context.Context) error
}

// Server manages the HTTP REST API
type Server struct {
	router  *gin.Engine
	config  *config.Config
	svc     Services
	opts    Options
	likeRL  *RateLimiter
	subRL   *RateLimiter
	httpSrv *http.Server
}

func NewServer(cfg *config.Config, svc Services, opts Options) *Server {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(opts.Metrics))
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	router.MaxMultipartMemory = 8 << 20

	rl := cfg.RateLimit
	s := &Server{
		router: router,
		config: cfg,
		svc:    svc,
		opts:   opts,
		likeRL: NewRateLimiter(rl.LikesPerSecond, rl.LikesBurst),
		subRL:  NewRateLimiter(rl.SubmissionsPerMinute/60, rl.SubmissionsBurst),
	}

	s.httpSrv = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	if s.opts.Metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.opts.Metrics.Handler()))
	}
	if s.opts.WebSocket != nil {
		s.router.GET("/ws/activity", s.opts.WebSocket)
	}

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.healthCheck)

		auth := v1.Group("/auth")
		{
			auth.POST("/register", s.register)
			auth.POST("/login", s.login)
		}

		// Public reads; a token, when present, personalises like state
		public := v1.Group("", OptionalAuth(s.svc.Auth))
		{
			public.GET("/activity", s.getCommunityFeed)
			public.GET("/leaderboard", s.getLeaderboard)
			public.GET("/profiles/:id", s.getProfile)
			public.GET("/profiles/:id/rank", s.getProfileRank)
			public.GET("/missions", s.listMissions)
			public.GET("/missions/:id", s.getMission)
			public.GET("/submissions/:id/likes", s.getLikeInfo)
		}

		protected := v1.Group("", AuthMiddleware(s.svc.Auth))
		{
			protected.GET("/me", s.getMe)
			protected.PUT("/profiles/me", s.updateMyProfile)
			protected.PUT("/profiles/me/avatar", s.updateMyAvatar)
			protected.GET("/me/submissions", s.listMySubmissions)

			protected.POST("/missions/:id/submissions", s.subRL.Middleware(), s.createSubmission)
			protected.POST("/missions/:id/drafts", s.saveDraft)
			protected.PUT("/drafts/:id", s.saveDraft)
			protected.POST("/drafts/:id/submit", s.subRL.Middleware(), s.submitDraft)
			protected.DELETE("/drafts/:id", s.deleteDraft)
			protected.PUT("/submissions/:id", s.updateSubmission)

			protected.POST("/submissions/:id/like", s.likeRL.Middleware(), s.toggleLike)
		}

		admin := v1.Group("/admin", AuthMiddleware(s.svc.Auth), AdminMiddleware())
		{
			admin.GET("/submissions", s.listSubmissionsForReview)
			admin.POST("/submissions/:id/review", s.reviewSubmission)
			admin.DELETE("/submissions/:id", s.deleteSubmission)

			admin.GET("/users", s.listUsers)
			admin.PUT("/users/:id/role", s.updateUserRole)
			admin.DELETE("/users/:id", s.deleteUser)

			admin.POST("/missions", s.createMission)
			admin.PUT("/missions/order", s.reorderMissions)
			admin.PUT("/missions/:id", s.updateMission)
			admin.DELETE("/missions/:id", s.deleteMission)
		}
	}
}

// Router returns the gin engine (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	logger.Infof("HTTP server listening on %s", lis.Addr())
	if err := s.httpSrv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) healthCheck(c *gin.Context) {
	status, code := "ok", http.StatusOK
	if s.opts.HealthCheck != nil {
		if err := s.opts.HealthCheck(c.Request.Context()); err != nil {
			logger.Warnf("health check failed: %v", err)
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
