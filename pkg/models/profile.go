package models

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// Role represents valid profile roles
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleParticipant Role = "participant"
	RoleViewOnly    Role = "view_only"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleParticipant, RoleViewOnly:
		return true
	}
	return false
}

// Profile is a registered member of the community
type Profile struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Email             string    `json:"email" db:"email"`
	AvatarURL         *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	JobTitle          *string   `json:"job_title,omitempty" db:"job_title"`
	Department        *string   `json:"department,omitempty" db:"department"`
	Country           *string   `json:"country,omitempty" db:"country"`
	Bio               *string   `json:"bio,omitempty" db:"bio"`
	CustomerObsession *string   `json:"customer_obsession,omitempty" db:"customer_obsession"`
	TotalPoints       int       `json:"total_points" db:"total_points"`
	Role              Role      `json:"role" db:"role"`
	PasswordHash      string    `json:"-" db:"password_hash"`
	IsDeleted         bool      `json:"is_deleted" db:"is_deleted"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the profile may moderate
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanSubmit reports whether the profile may create submissions and likes
func (p *Profile) CanSubmit() bool {
	return p.Role == RoleAdmin || p.Role == RoleParticipant
}

// ProfileView is the public shape returned by profile lookups
type ProfileView struct {
	Profile
	Rank          int  `json:"rank,omitempty"`
	Ranked        bool `json:"ranked"`
	ApprovedCount int  `json:"approved_count"`
}

// ProfilePatch carries optional edits. Nil or empty fields are left unchanged.
type ProfilePatch struct {
	Name              string  `json:"name"`
	JobTitle          *string `json:"job_title,omitempty"`
	Department        *string `json:"department,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	Country           *string `json:"country,omitempty"`
	CustomerObsession *string `json:"customer_obsession,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PublicProfile carries no sensitive data
type PublicProfile struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Role      Role    `json:"role"`
}

type LoginResponse struct {
	Token     string        `json:"token"`
	Profile   PublicProfile `json:"profile"`
	ExpiresIn int           `json:"expires_in"`
}

type RoleUpdateRequest struct {
	Role Role `json:"role" binding:"required"`
}

// ValidateRegisterRequest adds validation beyond struct tags
func ValidateRegisterRequest(req *RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("name is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return errors.New("email address is invalid")
	}
	if len(req.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

func (p *Profile) Public() PublicProfile {
	return PublicProfile{ID: p.ID, Name: p.Name, AvatarURL: p.AvatarURL, Role: p.Role}
}
