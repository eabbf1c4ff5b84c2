package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
)

// Границы trust score
const (
	MinTrustScore = 0
	MaxTrustScore = 100
)

// User описывает участника платформы: клиента или фрилансера.
// Баланс пользователя не хранится в этой структуре — он всегда
// выводится из леджера транзакций.
type User struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Email             string     `db:"email" json:"email"`
	Username          string     `db:"username" json:"username"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	Role              string     `db:"role" json:"role"`
	Country           *string    `db:"country" json:"country,omitempty"`
	TrustScore        int        `db:"trust_score" json:"trust_score"`
	Verified          bool       `db:"verified" json:"verified"`
	Pro               bool       `db:"pro" json:"pro"`
	Rating            float64    `db:"rating" json:"rating"`
	CompletedProjects int        `db:"completed_projects" json:"completed_projects"`
	IsActive          bool       `db:"is_active" json:"is_active"`
	LastLoginAt       *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
