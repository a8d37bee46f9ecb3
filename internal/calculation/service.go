package calculation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/trafficmanagerhub/hub/internal/client"
	"github.com/trafficmanagerhub/hub/internal/plan"
	"github.com/trafficmanagerhub/hub/internal/previsibilidade"
	"github.com/trafficmanagerhub/hub/internal/service"
	"github.com/trafficmanagerhub/hub/internal/util"
)

type store interface {
	Insert(ctx context.Context, rec Record) (*Record, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (*Record, error)
	List(ctx context.Context, filter Filter) ([]Record, error)
	Count(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)
}

// Quota grava dentro do limite do plano.
type Quota interface {
	Reserve(ctx context.Context, accountID uuid.UUID, resource plan.Resource, create func(ctx context.Context) error) error
}

// ClientLookup confirma que o cliente vinculado pertence à conta.
type ClientLookup interface {
	Get(ctx context.Context, accountID, id uuid.UUID) (*client.Client, error)
}

// Service valida, calcula e registra projeções de previsibilidade.
type Service struct {
	repo     store
	quota    Quota
	clients  ClientLookup
	recorded func(mode string)
}

// NewService cria o serviço; recorded é chamado a cada registro gravado.
func NewService(repo *Repository, quota Quota, clients ClientLookup, recorded func(mode string)) *Service {
	return &Service{repo: repo, quota: quota, clients: clients, recorded: recorded}
}

// Simplified executa o modo simplificado e grava o resultado.
func (s *Service) Simplified(ctx context.Context, accountID uuid.UUID, clientID *uuid.UUID, in previsibilidade.PartialInput) (*Record, error) {
	if msgs := previsibilidade.ValidateSimplifiedInput(in); len(msgs) > 0 {
		return nil, &service.ValidationError{Messages: msgs}
	}

	input := in.Simplified()
	result := previsibilidade.CalculateSimplified(input)
	if !result.Finite() {
		return nil, &service.ValidationError{Messages: []string{previsibilidade.MsgOutOfRange}}
	}
	if err := s.checkClient(ctx, accountID, clientID); err != nil {
		return nil, err
	}
	return s.persist(ctx, accountID, clientID, ModeSimplified, input, result)
}

// Complete executa o modo completo (três cenários) e grava o resultado.
func (s *Service) Complete(ctx context.Context, accountID uuid.UUID, clientID *uuid.UUID, in previsibilidade.PartialInput) (*Record, error) {
	if msgs := previsibilidade.ValidateCompleteInput(in); len(msgs) > 0 {
		return nil, &service.ValidationError{Messages: msgs}
	}

	input := in.Complete()
	result := previsibilidade.CalculateComplete(input)
	for _, scenario := range result {
		if !scenario.Finite() {
			return nil, &service.ValidationError{Messages: []string{previsibilidade.MsgOutOfRange}}
		}
	}
	if err := s.checkClient(ctx, accountID, clientID); err != nil {
		return nil, err
	}
	return s.persist(ctx, accountID, clientID, ModeComplete, input, result)
}

// EstimateTraffic estima CPC e cliques para o investimento; não grava nada.
func (s *Service) EstimateTraffic(spend float64) (previsibilidade.TrafficEstimate, error) {
	if msgs := previsibilidade.ValidateSpend(spend); len(msgs) > 0 {
		return previsibilidade.TrafficEstimate{}, &service.ValidationError{Messages: msgs}
	}
	return previsibilidade.EstimateTraffic(spend), nil
}

// List devolve o histórico da conta.
func (s *Service) List(ctx context.Context, filter Filter) ([]Record, error) {
	filter.Mode = strings.ToLower(strings.TrimSpace(filter.Mode))
	if filter.Mode != "" && filter.Mode != ModeSimplified && filter.Mode != ModeComplete {
		return nil, fmt.Errorf("%w: modo desconhecido", ErrInvalidInput)
	}
	return s.repo.List(ctx, filter)
}

// Get recupera um registro do histórico.
func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*Record, error) {
	return s.repo.Get(ctx, accountID, id)
}

// Count implementa o contador de uso do plano.
func (s *Service) Count(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	return s.repo.Count(ctx, accountID, since)
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

func (s *Service) persist(ctx context.Context, accountID uuid.UUID, clientID *uuid.UUID, mode string, input, result any) (*Record, error) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("serializar entrada: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("serializar resultado: %w", err)
	}

	var rec *Record
	err = s.quota.Reserve(ctx, accountID, plan.ResourceCalculations, func(ctx context.Context) error {
		var err error
		rec, err = s.repo.Insert(ctx, Record{
			ID:        util.NewID(),
			AccountID: accountID,
			ClientID:  clientID,
			Mode:      mode,
			Input:     inputJSON,
			Result:    resultJSON,
			CreatedAt: util.Now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.recorded != nil {
		s.recorded(mode)
	}
	log.Debug().Str("account_id", accountID.String()).Str("mode", mode).Str("calculation_id", rec.ID.String()).Msg("cálculo registrado")
	return rec, nil
}
