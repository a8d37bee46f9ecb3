package repo

import (
	"time"

	"github.com/google/uuid"
)

// Account representa o gestor de tráfego dono do espaço de trabalho.
type Account struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Plan         string
	Active       bool
	CreatedAt    time.Time
}

// RefreshToken modela tabela de refresh tokens.
type RefreshToken struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	Audience  string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	Revoked   bool
}

// CreateAccountParams reúne os campos de cadastro.
type CreateAccountParams struct {
	Name         string
	Email        string
	PasswordHash string
	Plan         string
}

// InsertRefreshTokenParams reúne os campos de um novo refresh token.
type InsertRefreshTokenParams struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	Audience  string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
