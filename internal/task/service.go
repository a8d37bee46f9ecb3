package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trafficmanagerhub/hub/internal/client"
)

type store interface {
	Create(ctx context.Context, input CreateInput) (*Task, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (*Task, error)
	List(ctx context.Context, filter Filter) ([]Task, error)
	Update(ctx context.Context, input UpdateInput) (*Task, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	CountOpen(ctx context.Context, accountID uuid.UUID) (int, error)
	CountMeetingsBetween(ctx context.Context, accountID uuid.UUID, from, to time.Time) (int, error)
}

// ClientLookup confirma que o cliente vinculado pertence à conta.
type ClientLookup interface {
	Get(ctx context.Context, accountID, id uuid.UUID) (*client.Client, error)
}

// Service reúne regras da agenda de tarefas e reuniões.
type Service struct {
	repo    store
	clients ClientLookup
	now     func() time.Time
}

// NewService cria uma nova instância do serviço.
func NewService(repo *Repository, clients ClientLookup) *Service {
	return &Service{repo: repo, clients: clients, now: time.Now}
}

// Create agenda tarefa ou reunião.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Kind = NormalizeKind(input.Kind)
	input.Status = NormalizeStatus(input.Status)

	if input.Title == "" {
		return nil, fmt.Errorf("%w: título obrigatório", ErrInvalidInput)
	}
	if !IsValidKind(input.Kind) {
		return nil, ErrInvalidKind
	}
	if !IsValidStatus(input.Status) {
		return nil, ErrInvalidStatus
	}
	if input.Kind == KindMeeting && input.DueAt == nil {
		return nil, fmt.Errorf("%w: reunião exige data", ErrInvalidInput)
	}
	if err := s.checkClient(ctx, input.AccountID, input.ClientID); err != nil {
		return nil, err
	}

	input.CompletedAt = s.completedAt(input.Status)
	return s.repo.Create(ctx, input)
}

// List lista a agenda dentro do filtro informado.
func (s *Service) List(ctx context.Context, filter Filter) ([]Task, error) {
	if len(filter.Status) > 0 {
		normalized := make([]string, 0, len(filter.Status))
		for _, status := range filter.Status {
			status = strings.ToLower(strings.TrimSpace(status))
			if IsValidStatus(status) {
				normalized = append(normalized, status)
			}
		}
		filter.Status = normalized
	}
	if filter.Kind != "" {
		filter.Kind = strings.ToLower(strings.TrimSpace(filter.Kind))
		if !IsValidKind(filter.Kind) {
			return nil, ErrInvalidKind
		}
	}
	return s.repo.List(ctx, filter)
}

// Update altera campos; status done registra a conclusão.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Task, error) {
	current, err := s.repo.Get(ctx, input.AccountID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: título obrigatório", ErrInvalidInput)
		}
		input.Title = &title
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		input.Description = &desc
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if !IsValidStatus(status) {
			return nil, ErrInvalidStatus
		}
		input.Status = &status
		input.CompletedAt = s.completedAt(status)
		if status == StatusDone && current.Status == StatusDone {
			input.CompletedAt = current.CompletedAt
		}
	}
	if current.Kind == KindMeeting && input.ClearDue && input.DueAt == nil {
		return nil, fmt.Errorf("%w: reunião exige data", ErrInvalidInput)
	}
	if err := s.checkClient(ctx, input.AccountID, input.ClientID); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, input)
}

// Delete remove tarefa.
func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return s.repo.Delete(ctx, accountID, id)
}

// CountOpen conta tarefas em aberto.
func (s *Service) CountOpen(ctx context.Context, accountID uuid.UUID) (int, error) {
	return s.repo.CountOpen(ctx, accountID)
}

// CountUpcomingMeetings conta reuniões abertas nos próximos dias.
func (s *Service) CountUpcomingMeetings(ctx context.Context, accountID uuid.UUID, days int) (int, error) {
	from := s.now().UTC()
	return s.repo.CountMeetingsBetween(ctx, accountID, from, from.AddDate(0, 0, days))
}

func (s *Service) completedAt(status string) *time.Time {
	if status != StatusDone {
		return nil
	}
	now := s.now().UTC()
	return &now
}

func (s *Service) checkClient(ctx context.Context, accountID uuid.UUID, clientID *uuid.UUID) error {
	if clientID == nil || s.clients == nil {
		return nil
	}
	if _, err := s.clients.Get(ctx, accountID, *clientID); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("%w: cliente inexistente", ErrInvalidInput)
		}
		return err
	}
	return nil
}
