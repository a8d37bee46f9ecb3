// Package dashboard consolida os números da tela inicial do gestor.
package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/trafficmanagerhub/hub/internal/plan"
)

const upcomingDays = 7

// Sources lista as consultas usadas pelo painel.
type Sources struct {
	ClientsByStatus  func(ctx context.Context, accountID uuid.UUID) (map[string]int, error)
	OpenTasks        func(ctx context.Context, accountID uuid.UUID) (int, error)
	UpcomingMeetings func(ctx context.Context, accountID uuid.UUID, days int) (int, error)
	Calculations     func(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)
	Diagnoses        func(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)
	Usage            func(ctx context.Context, accountID uuid.UUID) (plan.Plan, plan.Usage, error)
}

// Summary é o retorno de GET /dashboard.
type Summary struct {
	ClientsByStatus     map[string]int        `json:"clients_by_status"`
	TotalClients        int                   `json:"total_clients"`
	OpenTasks           int                   `json:"open_tasks"`
	UpcomingMeetings    int                   `json:"upcoming_meetings"`
	CalculationsInMonth int                   `json:"calculations_this_month"`
	DiagnosesInMonth    int                   `json:"diagnoses_this_month"`
	Plan                plan.Plan             `json:"plan"`
	Usage               plan.Usage            `json:"usage"`
	Remaining           map[plan.Resource]int `json:"remaining"`
	GeneratedAt         time.Time             `json:"generated_at"`
}

// Service monta o painel consultando as fontes em paralelo.
type Service struct {
	src Sources
	now func() time.Time
}

// NewService cria o serviço.
func NewService(src Sources) *Service {
	return &Service{src: src, now: time.Now}
}

// Summary executa todas as consultas; a primeira falha cancela as demais.
func (s *Service) Summary(ctx context.Context, accountID uuid.UUID) (*Summary, error) {
	now := s.now().UTC()
	since := plan.PeriodStart(now)
	out := &Summary{GeneratedAt: now}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		byStatus, err := s.src.ClientsByStatus(ctx, accountID)
		if err != nil {
			return err
		}
		out.ClientsByStatus = byStatus
		for _, n := range byStatus {
			out.TotalClients += n
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.src.OpenTasks(ctx, accountID)
		out.OpenTasks = n
		return err
	})
	g.Go(func() error {
		n, err := s.src.UpcomingMeetings(ctx, accountID, upcomingDays)
		out.UpcomingMeetings = n
		return err
	})
	g.Go(func() error {
		n, err := s.src.Calculations(ctx, accountID, since)
		out.CalculationsInMonth = n
		return err
	})
	g.Go(func() error {
		n, err := s.src.Diagnoses(ctx, accountID, since)
		out.DiagnosesInMonth = n
		return err
	})
	g.Go(func() error {
		p, usage, err := s.src.Usage(ctx, accountID)
		if err != nil {
			return err
		}
		out.Plan = p
		out.Usage = usage
		out.Remaining = p.Remaining(usage)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
