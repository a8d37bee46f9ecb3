package client

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("cliente não encontrado")
	ErrInvalidStatus = errors.New("status inválido")
	ErrInvalidInput  = errors.New("dados do cliente inválidos")
)

const (
	StatusLead        = "lead"
	StatusNegotiation = "negotiation"
	StatusActive      = "active"
	StatusPaused      = "paused"
	StatusChurned     = "churned"
)

var validStatuses = map[string]struct{}{
	StatusLead:        {},
	StatusNegotiation: {},
	StatusActive:      {},
	StatusPaused:      {},
	StatusChurned:     {},
}

// Statuses lista os status na ordem do funil.
var Statuses = []string{StatusLead, StatusNegotiation, StatusActive, StatusPaused, StatusChurned}

// Client representa um cliente (ou lead) da carteira do gestor.
type Client struct {
	ID            uuid.UUID `json:"id"`
	AccountID     uuid.UUID `json:"account_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Company       string    `json:"company"`
	Niche         string    `json:"niche"`
	Status        string    `json:"status"`
	MonthlyBudget *float64  `json:"monthly_budget,omitempty"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateInput encapsula campos do cadastro.
type CreateInput struct {
	AccountID     uuid.UUID
	Name          string
	Email         string
	Phone         string
	Company       string
	Niche         string
	Status        string
	MonthlyBudget *float64
	Notes         string
}

// UpdateInput altera apenas os campos informados.
type UpdateInput struct {
	ID            uuid.UUID
	AccountID     uuid.UUID
	Name          *string
	Email         *string
	Phone         *string
	Company       *string
	Niche         *string
	Status        *string
	MonthlyBudget *float64
	ClearBudget   bool
	Notes         *string
}

// Filter restringe a listagem da carteira.
type Filter struct {
	AccountID uuid.UUID
	Status    []string
	Search    string
	Limit     int
	Offset    int
}

// NormalizeStatus padroniza status; vazio vira lead.
func NormalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return StatusLead
	}
	return status
}

// IsValidStatus indica se o status é aceito.
func IsValidStatus(status string) bool {
	_, ok := validStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}
