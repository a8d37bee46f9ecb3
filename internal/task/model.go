package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("tarefa não encontrada")
	ErrInvalidStatus = errors.New("status inválido")
	ErrInvalidKind   = errors.New("tipo inválido")
	ErrInvalidInput  = errors.New("dados da tarefa inválidos")
)

const (
	KindTask    = "task"
	KindMeeting = "meeting"

	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"
)

var (
	validKinds = map[string]struct{}{
		KindTask:    {},
		KindMeeting: {},
	}
	validStatuses = map[string]struct{}{
		StatusPending:    {},
		StatusInProgress: {},
		StatusDone:       {},
		StatusCancelled:  {},
	}
)

// Task é uma tarefa ou reunião da agenda do gestor.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	AccountID   uuid.UUID  `json:"account_id"`
	ClientID    *uuid.UUID `json:"client_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateInput encapsula campos de criação.
type CreateInput struct {
	AccountID   uuid.UUID
	ClientID    *uuid.UUID
	Title       string
	Description string
	Kind        string
	Status      string
	DueAt       *time.Time
	CompletedAt *time.Time
}

// UpdateInput altera os campos informados.
type UpdateInput struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	ClientID    *uuid.UUID
	ClearClient bool
	Title       *string
	Description *string
	Status      *string
	DueAt       *time.Time
	ClearDue    bool
	CompletedAt *time.Time
}

// Filter restringe a listagem da agenda.
type Filter struct {
	AccountID uuid.UUID
	ClientID  *uuid.UUID
	Status    []string
	Kind      string
	DueFrom   *time.Time
	DueTo     *time.Time
	Limit     int
	Offset    int
}

// NormalizeStatus padroniza status; vazio vira pending.
func NormalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return StatusPending
	}
	return status
}

// NormalizeKind padroniza tipo; vazio vira task.
func NormalizeKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		return KindTask
	}
	return kind
}

// IsValidStatus indica se o status é aceito.
func IsValidStatus(status string) bool {
	_, ok := validStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// IsValidKind indica se o tipo é aceito.
func IsValidKind(kind string) bool {
	_, ok := validKinds[strings.ToLower(strings.TrimSpace(kind))]
	return ok
}
