// Package core holds the protocol-agnostic business logic: authentication,
// profiles, missions, submissions, likes, the community feed and ranking.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"missionhub/internal/repository"
	"missionhub/pkg/models"
)

// AuthService defines authentication operations
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.Profile, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*models.Profile, error)
	UpdateRole(ctx context.Context, profileID string, role models.Role) error
}

type authService struct {
	profileRepo repository.ProfileRepository
	jwtSecret   []byte
	jwtIssuer   string
	jwtExpiry   time.Duration
}

type jwtClaims struct {
	ProfileID string `json:"profile_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(profileRepo repository.ProfileRepository, jwtSecret, jwtIssuer string, jwtExpiry time.Duration) AuthService {
	return &authService{
		profileRepo: profileRepo,
		jwtSecret:   []byte(jwtSecret),
		jwtIssuer:   jwtIssuer,
		jwtExpiry:   jwtExpiry,
	}
}

// Register creates a participant profile
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.Profile, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := models.ValidateRegisterRequest(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	exists, err := s.profileRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, models.ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hashed),
		Role:         models.RoleParticipant,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	profile.PasswordHash = ""
	return profile, nil
}

// Login authenticates by email and returns a signed token
func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, models.ErrProfileNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	token, expiresAt, err := s.generateToken(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.LoginResponse{
		Token:     token,
		Profile:   profile.Public(),
		ExpiresIn: int(time.Until(expiresAt).Seconds()),
	}, nil
}

// ValidateToken verifies the token and reloads the profile so role changes
// and deletions take effect before the token expires.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*models.Profile, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, models.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid || claims.ProfileID == "" {
		return nil, models.ErrInvalidToken
	}

	profile, err := s.profileRepo.GetByID(ctx, claims.ProfileID)
	if err != nil || profile.IsDeleted {
		return nil, models.ErrInvalidToken
	}
	profile.PasswordHash = ""
	return profile, nil
}

func (s *authService) UpdateRole(ctx context.Context, profileID string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: role must be one of admin, participant, view_only", models.ErrInvalidInput)
	}
	if err := s.profileRepo.UpdateRole(ctx, profileID, role); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

func (s *authService) generateToken(profile *models.Profile) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.jwtExpiry)

	claims := &jwtClaims{
		ProfileID: profile.ID,
		Role:      string(profile.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.jwtIssuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
