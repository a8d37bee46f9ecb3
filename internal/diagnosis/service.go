package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trafficmanagerhub/hub/internal/client"
	"github.com/trafficmanagerhub/hub/internal/plan"
	"github.com/trafficmanagerhub/hub/internal/previsibilidade"
	"github.com/trafficmanagerhub/hub/internal/util"
)

type store interface {
	Insert(ctx context.Context, d Diagnosis) (*Diagnosis, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (*Diagnosis, error)
	List(ctx context.Context, filter Filter) ([]Diagnosis, error)
	Count(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)
}

type siteReader interface {
	Fetch(ctx context.Context, pageURL string) (*SiteContext, error)
}

// Quota aplica limites do plano. Enforce é a checagem prévia, antes da
// chamada à IA; Reserve repete a checagem e grava na mesma transação.
type Quota interface {
	Enforce(ctx context.Context, accountID uuid.UUID, resource plan.Resource) error
	Reserve(ctx context.Context, accountID uuid.UUID, resource plan.Resource, create func(ctx context.Context) error) error
}

// ClientLookup confirma que o cliente vinculado pertence à conta.
type ClientLookup interface {
	Get(ctx context.Context, accountID, id uuid.UUID) (*client.Client, error)
}

// Options reúne dependências opcionais do serviço.
type Options struct {
	Cache     Cache
	CacheTTL  time.Duration
	Site      siteReader
	Timeout   time.Duration
	Generated func(source string)
}

// Service orquestra geração, cache e gravação de diagnósticos.
type Service struct {
	repo      store
	quota     Quota
	clients   ClientLookup
	provider  Provider
	prompts   *Prompts
	cache     Cache
	cacheTTL  time.Duration
	site      siteReader
	timeout   time.Duration
	generated func(source string)
	logger    zerolog.Logger
}

// NewService cria o serviço.
func NewService(repo *Repository, quota Quota, clients ClientLookup, provider Provider, prompts *Prompts, opts Options) *Service {
	return &Service{
		repo:      repo,
		quota:     quota,
		clients:   clients,
		provider:  provider,
		prompts:   prompts,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		site:      opts.Site,
		timeout:   opts.Timeout,
		generated: opts.Generated,
		logger:    log.With().Str("component", "diagnosis").Logger(),
	}
}

// Generate produz e grava um diagnóstico. Entradas já vistas são servidas do
// cache sem consumir a cota do plano.
func (s *Service) Generate(ctx context.Context, accountID uuid.UUID, in Input) (*Diagnosis, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}
	if in.ClientID != nil && s.clients != nil {
		if _, err := s.clients.Get(ctx, accountID, *in.ClientID); err != nil {
			if errors.Is(err, client.ErrNotFound) {
				return nil, fmt.Errorf("%w: cliente inexistente", ErrInvalidInput)
			}
			return nil, err
		}
	}

	key := CacheKey(in)
	if cached := s.loadCache(ctx, key); cached != nil {
		cached.Source = SourceCache
		d, err := s.repo.Insert(ctx, s.record(accountID, in, *cached))
		if err != nil {
			return nil, err
		}
		s.announce(d)
		return d, nil
	}

	if err := s.quota.Enforce(ctx, accountID, plan.ResourceDiagnoses); err != nil {
		return nil, err
	}

	gen, err := s.generate(ctx, in)
	if err != nil {
		return nil, err
	}
	if gen.Source == SourceAI {
		s.storeCache(ctx, key, gen)
	}

	var d *Diagnosis
	err = s.quota.Reserve(ctx, accountID, plan.ResourceDiagnoses, func(ctx context.Context) error {
		var err error
		d, err = s.repo.Insert(ctx, s.record(accountID, in, gen))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.announce(d)
	return d, nil
}

// List devolve diagnósticos da conta.
func (s *Service) List(ctx context.Context, filter Filter) ([]Diagnosis, error) {
	return s.repo.List(ctx, filter)
}

// Get recupera um diagnóstico.
func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*Diagnosis, error) {
	return s.repo.Get(ctx, accountID, id)
}

// Count implementa o contador de uso do plano.
func (s *Service) Count(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	return s.repo.Count(ctx, accountID, since)
}

func (s *Service) generate(ctx context.Context, in Input) (Generated, error) {
	var traffic *previsibilidade.TrafficEstimate
	if in.MonthlyBudget != nil && *in.MonthlyBudget > 0 {
		est := previsibilidade.EstimateTraffic(*in.MonthlyBudget)
		traffic = &est
	}

	report, model, err := s.ask(ctx, in, traffic)
	source := SourceAI
	if err != nil {
		if errors.Is(err, ErrProviderDisabled) {
			s.logger.Debug().Msg("provedor desligado; usando fallback")
		} else {
			s.logger.Warn().Err(err).Str("niche", in.Niche).Msg("falha na IA; usando fallback")
		}
		report = BuildFallback(in)
		model = ""
		source = SourceFallback
	}
	report.Traffic = traffic

	html, err := RenderHTML(report)
	if err != nil {
		return Generated{}, fmt.Errorf("renderizar relatório: %w", err)
	}
	return Generated{Report: report, HTML: html, Source: source, Model: model}, nil
}

func (s *Service) ask(ctx context.Context, in Input, traffic *previsibilidade.TrafficEstimate) (Report, string, error) {
	if s.provider == nil {
		return Report{}, "", ErrProviderDisabled
	}
	if _, disabled := s.provider.(NoopProvider); disabled {
		return Report{}, "", ErrProviderDisabled
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var site *SiteContext
	if in.Website != "" && s.site != nil {
		fetched, err := s.site.Fetch(ctx, in.Website)
		if err != nil {
			s.logger.Info().Err(err).Str("website", in.Website).Msg("site ignorado no diagnóstico")
		} else {
			site = fetched
		}
	}

	prompt, err := s.prompts.Render(in, traffic, site)
	if err != nil {
		return Report{}, "", err
	}

	raw, err := s.provider.Generate(ctx, s.prompts.System, prompt)
	if err != nil {
		return Report{}, "", err
	}

	report, err := ParseReport(raw)
	if err != nil {
		return Report{}, "", err
	}
	return report, s.provider.Model(), nil
}

func (s *Service) record(accountID uuid.UUID, in Input, gen Generated) Diagnosis {
	return Diagnosis{
		ID:        util.NewID(),
		AccountID: accountID,
		ClientID:  in.ClientID,
		Niche:     in.Niche,
		Input:     in,
		Report:    gen.Report,
		HTML:      gen.HTML,
		Source:    gen.Source,
		Model:     gen.Model,
		CreatedAt: util.Now(),
	}
}

func (s *Service) announce(d *Diagnosis) {
	if s.generated != nil {
		s.generated(d.Source)
	}
	s.logger.Info().Str("account_id", d.AccountID.String()).Str("diagnosis_id", d.ID.String()).Str("source", d.Source).Msg("diagnóstico gerado")
}

func (s *Service) loadCache(ctx context.Context, key string) *Generated {
	if s.cache == nil {
		return nil
	}
	g, err := s.cache.Load(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache de diagnóstico indisponível")
		return nil
	}
	return g
}

func (s *Service) storeCache(ctx context.Context, key string, g Generated) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Store(ctx, key, g, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("falha ao gravar cache de diagnóstico")
	}
}

func normalizeInput(in Input) (Input, error) {
	in.Niche = strings.TrimSpace(in.Niche)
	in.City = strings.TrimSpace(in.City)
	in.TargetAudience = strings.TrimSpace(in.TargetAudience)

	if in.Niche == "" {
		return Input{}, fmt.Errorf("%w: nicho obrigatório", ErrInvalidInput)
	}
	if !nonNegative(in.MonthlyBudget) {
		return Input{}, fmt.Errorf("%w: investimento mensal deve ser maior ou igual a zero", ErrInvalidInput)
	}
	if !nonNegative(in.AverageTicket) {
		return Input{}, fmt.Errorf("%w: ticket médio deve ser maior ou igual a zero", ErrInvalidInput)
	}

	website, err := NormalizeURL(in.Website)
	if err != nil {
		return Input{}, err
	}
	in.Website = website
	return in, nil
}

func nonNegative(v *float64) bool {
	if v == nil {
		return true
	}
	return !math.IsNaN(*v) && !math.IsInf(*v, 0) && *v >= 0 && *v <= previsibilidade.MaxValue
}
