package client

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/trafficmanagerhub/hub/internal/plan"
	"github.com/trafficmanagerhub/hub/internal/util"
)

type store interface {
	Create(ctx context.Context, input CreateInput) (*Client, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (*Client, error)
	List(ctx context.Context, filter Filter) ([]Client, error)
	Update(ctx context.Context, input UpdateInput) (*Client, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	Count(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)
	CountByStatus(ctx context.Context, accountID uuid.UUID) (map[string]int, error)
}

// Quota aplica limites do plano antes de criar registros.
type Quota interface {
	Reserve(ctx context.Context, accountID uuid.UUID, resource plan.Resource, create func(ctx context.Context) error) error
}

// Service reúne regras de negócio da carteira de clientes.
type Service struct {
	repo  store
	quota Quota
}

// NewService cria uma nova instância do serviço.
func NewService(repo *Repository, quota Quota) *Service {
	return &Service{repo: repo, quota: quota}
}

// Create cadastra cliente respeitando o limite do plano.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Client, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	input.Company = strings.TrimSpace(input.Company)
	input.Niche = strings.TrimSpace(input.Niche)
	input.Notes = strings.TrimSpace(input.Notes)
	input.Status = NormalizeStatus(input.Status)

	if input.Name == "" {
		return nil, fmt.Errorf("%w: nome obrigatório", ErrInvalidInput)
	}
	if input.Email != "" {
		if err := util.ValidateEmail(input.Email); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if !IsValidStatus(input.Status) {
		return nil, ErrInvalidStatus
	}
	if err := checkBudget(input.MonthlyBudget); err != nil {
		return nil, err
	}

	var c *Client
	err := s.quota.Reserve(ctx, input.AccountID, plan.ResourceClients, func(ctx context.Context) error {
		var err error
		c, err = s.repo.Create(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("account_id", input.AccountID.String()).Str("client_id", c.ID.String()).Msg("cliente cadastrado")
	return c, nil
}

// List lista a carteira dentro do filtro informado.
func (s *Service) List(ctx context.Context, filter Filter) ([]Client, error) {
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
	return s.repo.List(ctx, filter)
}

// Get recupera um cliente da conta.
func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*Client, error) {
	return s.repo.Get(ctx, accountID, id)
}

// Update altera os campos informados.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Client, error) {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: nome obrigatório", ErrInvalidInput)
		}
		input.Name = &name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != "" {
			if err := util.ValidateEmail(email); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
		input.Email = &email
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if !IsValidStatus(status) {
			return nil, ErrInvalidStatus
		}
		input.Status = &status
	}
	if err := checkBudget(input.MonthlyBudget); err != nil {
		return nil, err
	}
	input.Phone = trimPtr(input.Phone)
	input.Company = trimPtr(input.Company)
	input.Niche = trimPtr(input.Niche)
	input.Notes = trimPtr(input.Notes)

	return s.repo.Update(ctx, input)
}

// Delete remove o cliente.
func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return s.repo.Delete(ctx, accountID, id)
}

// Count implementa o contador de uso do plano.
func (s *Service) Count(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	return s.repo.Count(ctx, accountID, since)
}

// CountByStatus resume a carteira por status.
func (s *Service) CountByStatus(ctx context.Context, accountID uuid.UUID) (map[string]int, error) {
	return s.repo.CountByStatus(ctx, accountID)
}

func checkBudget(budget *float64) error {
	if budget == nil {
		return nil
	}
	if math.IsNaN(*budget) || math.IsInf(*budget, 0) || *budget < 0 {
		return fmt.Errorf("%w: orçamento mensal deve ser maior ou igual a zero", ErrInvalidInput)
	}
	return nil
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
