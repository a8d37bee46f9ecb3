package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/trafficmanagerhub/hub/internal/db"
	"github.com/trafficmanagerhub/hub/internal/plan"
	"github.com/trafficmanagerhub/hub/internal/repo"
)

// Counter conta quantos registros a conta criou desde since. Contadores de
// estoque (ex.: clientes) ignoram since.
type Counter interface {
	Count(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)
}

// CounterFunc adapta função para Counter.
type CounterFunc func(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)

// Count implementa Counter.
func (f CounterFunc) Count(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	return f(ctx, accountID, since)
}

type accountReader interface {
	GetAccountByID(ctx context.Context, id uuid.UUID) (repo.Account, error)
	LockAccount(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// LimitObserver é notificado quando uma conta esbarra no limite do plano.
type LimitObserver func(resource plan.Resource)

// UsageService aplica os limites do plano sobre o consumo de cada conta.
type UsageService struct {
	accounts accountReader
	tx       txRunner
	counters map[plan.Resource]Counter
	onLimit  LimitObserver
	now      func() time.Time
}

// NewUsageService cria o serviço; counters deve cobrir todos os recursos.
func NewUsageService(accounts *repo.Queries, atomic *db.Atomic, counters map[plan.Resource]Counter, onLimit LimitObserver) *UsageService {
	return &UsageService{accounts: accounts, tx: atomic, counters: counters, onLimit: onLimit, now: time.Now}
}

// Enforce retorna plan.ErrLimitReached se a conta não pode criar mais um
// registro do recurso.
func (s *UsageService) Enforce(ctx context.Context, accountID uuid.UUID, resource plan.Resource) error {
	p, err := s.accountPlan(ctx, accountID)
	if err != nil {
		return err
	}
	if p.Limit(resource) == 0 {
		return nil
	}

	used, err := s.count(ctx, accountID, resource)
	if err != nil {
		return err
	}

	if err := p.Check(resource, used); err != nil {
		log.Info().Str("account_id", accountID.String()).Str("resource", string(resource)).Int("used", used).Msg("limite do plano atingido")
		if s.onLimit != nil {
			s.onLimit(resource)
		}
		return err
	}
	return nil
}

// Reserve confere o limite e executa create na mesma transação, com a
// linha da conta travada. Duas criações concorrentes da mesma conta são
// serializadas, então a contagem não estoura o limite.
func (s *UsageService) Reserve(ctx context.Context, accountID uuid.UUID, resource plan.Resource, create func(ctx context.Context) error) error {
	return s.tx.Run(ctx, func(ctx context.Context) error {
		if err := s.accounts.LockAccount(ctx, accountID); err != nil {
			return err
		}
		if err := s.Enforce(ctx, accountID, resource); err != nil {
			return err
		}
		return create(ctx)
	})
}

// Summary devolve plano e consumo atual da conta.
func (s *UsageService) Summary(ctx context.Context, accountID uuid.UUID) (plan.Plan, plan.Usage, error) {
	p, err := s.accountPlan(ctx, accountID)
	if err != nil {
		return plan.Plan{}, plan.Usage{}, err
	}

	var usage plan.Usage
	if usage.Clients, err = s.count(ctx, accountID, plan.ResourceClients); err != nil {
		return plan.Plan{}, plan.Usage{}, err
	}
	if usage.Calculations, err = s.count(ctx, accountID, plan.ResourceCalculations); err != nil {
		return plan.Plan{}, plan.Usage{}, err
	}
	if usage.Diagnoses, err = s.count(ctx, accountID, plan.ResourceDiagnoses); err != nil {
		return plan.Plan{}, plan.Usage{}, err
	}
	return p, usage, nil
}

func (s *UsageService) accountPlan(ctx context.Context, accountID uuid.UUID) (plan.Plan, error) {
	acc, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return plan.Plan{}, err
	}
	return plan.Lookup(acc.Plan)
}

func (s *UsageService) count(ctx context.Context, accountID uuid.UUID, resource plan.Resource) (int, error) {
	counter, ok := s.counters[resource]
	if !ok {
		return 0, fmt.Errorf("contador ausente para %s", resource)
	}
	return counter.Count(ctx, accountID, plan.PeriodStart(s.now()))
}
