package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trafficmanagerhub/hub/internal/auth"
	"github.com/trafficmanagerhub/hub/internal/calculation"
	"github.com/trafficmanagerhub/hub/internal/client"
	"github.com/trafficmanagerhub/hub/internal/config"
	"github.com/trafficmanagerhub/hub/internal/dashboard"
	"github.com/trafficmanagerhub/hub/internal/diagnosis"
	"github.com/trafficmanagerhub/hub/internal/http/envelope"
	httpmiddleware "github.com/trafficmanagerhub/hub/internal/http/middleware"
	"github.com/trafficmanagerhub/hub/internal/metrics"
	"github.com/trafficmanagerhub/hub/internal/plan"
	"github.com/trafficmanagerhub/hub/internal/previsibilidade"
	"github.com/trafficmanagerhub/hub/internal/service"
	"github.com/trafficmanagerhub/hub/internal/task"
)

// AuthService cobre cadastro e sessões.
type AuthService interface {
	JWT() *auth.JWTManager
	Register(ctx context.Context, input service.RegisterInput) (*service.LoginResult, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Refresh(ctx context.Context, rawToken string) (*service.LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	GetMe(ctx context.Context, accountID uuid.UUID) (*service.Profile, error)
}

// UsageService informa plano e consumo da conta.
type UsageService interface {
	Summary(ctx context.Context, accountID uuid.UUID) (plan.Plan, plan.Usage, error)
}

// ClientService cobre a carteira de clientes.
type ClientService interface {
	Create(ctx context.Context, input client.CreateInput) (*client.Client, error)
	List(ctx context.Context, filter client.Filter) ([]client.Client, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (*client.Client, error)
	Update(ctx context.Context, input client.UpdateInput) (*client.Client, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}

// TaskService cobre tarefas e reuniões.
type TaskService interface {
	Create(ctx context.Context, input task.CreateInput) (*task.Task, error)
	List(ctx context.Context, filter task.Filter) ([]task.Task, error)
	Update(ctx context.Context, input task.UpdateInput) (*task.Task, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}

// CalculationService executa e consulta a calculadora de previsibilidade.
type CalculationService interface {
	Simplified(ctx context.Context, accountID uuid.UUID, clientID *uuid.UUID, in previsibilidade.PartialInput) (*calculation.Record, error)
	Complete(ctx context.Context, accountID uuid.UUID, clientID *uuid.UUID, in previsibilidade.PartialInput) (*calculation.Record, error)
	EstimateTraffic(spend float64) (previsibilidade.TrafficEstimate, error)
	List(ctx context.Context, filter calculation.Filter) ([]calculation.Record, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (*calculation.Record, error)
}

// DiagnosisService gera e consulta diagnósticos de nicho.
type DiagnosisService interface {
	Generate(ctx context.Context, accountID uuid.UUID, in diagnosis.Input) (*diagnosis.Diagnosis, error)
	List(ctx context.Context, filter diagnosis.Filter) ([]diagnosis.Diagnosis, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (*diagnosis.Diagnosis, error)
}

// DashboardService monta o painel inicial.
type DashboardService interface {
	Summary(ctx context.Context, accountID uuid.UUID) (*dashboard.Summary, error)
}

// Check verifica uma dependência externa no /ready.
type Check func(ctx context.Context) error

// Dependencies reúne tudo que o roteador expõe.
type Dependencies struct {
	Auth         AuthService
	Usage        UsageService
	Clients      ClientService
	Tasks        TaskService
	Calculations CalculationService
	Diagnoses    DiagnosisService
	Dashboard    DashboardService
	Metrics      *metrics.Metrics
	Checks       map[string]Check
}

type Handler struct {
	cfg           *config.Config
	authService   AuthService
	usage         UsageService
	clients       ClientService
	tasks         TaskService
	calculations  CalculationService
	diagnoses     DiagnosisService
	dashboard     DashboardService
	metrics       *metrics.Metrics
	checks        map[string]Check
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, deps Dependencies) (http.Handler, error) {
	if deps.Auth == nil {
		return nil, errors.New("serviço de autenticação obrigatório")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	h := &Handler{
		cfg:           cfg,
		authService:   deps.Auth,
		usage:         deps.Usage,
		clients:       deps.Clients,
		tasks:         deps.Tasks,
		calculations:  deps.Calculations,
		diagnoses:     deps.Diagnoses,
		dashboard:     deps.Dashboard,
		metrics:       deps.Metrics,
		checks:        deps.Checks,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    cfg.DevCookies(),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Metrics(h.metrics))
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Get("/plans", h.ListPlans)
		public.Get("/calculator/cpc", h.EstimateCPC)

		public.Route("/auth", func(a chi.Router) {
			a.Post("/register", h.Register)
			a.Post("/login", h.Login)
			a.Post("/refresh", h.Refresh)
			a.Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(h.authService.JWT()))
		private.Use(httpmiddleware.RequireRoles(auth.RoleConsultant))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)
		private.Get("/dashboard", h.Dashboard)

		private.Route("/clients", func(c chi.Router) {
			c.Get("/", h.ListClients)
			c.Post("/", h.CreateClient)
			c.Get("/{id}", h.GetClient)
			c.Patch("/{id}", h.UpdateClient)
			c.Delete("/{id}", h.DeleteClient)
		})

		private.Route("/tasks", func(t chi.Router) {
			t.Get("/", h.ListTasks)
			t.Post("/", h.CreateTask)
			t.Patch("/{id}", h.UpdateTask)
			t.Delete("/{id}", h.DeleteTask)
		})

		private.Post("/calculator/simplified", h.CalculateSimplified)
		private.Post("/calculator/complete", h.CalculateComplete)
		private.Get("/calculator/history", h.ListCalculations)
		private.Get("/calculator/history/{id}", h.GetCalculation)

		private.Route("/diagnoses", func(d chi.Router) {
			d.Get("/", h.ListDiagnoses)
			d.Post("/", h.CreateDiagnosis)
			d.Get("/{id}", h.GetDiagnosis)
		})
	})

	return r, nil
}

// Health responde liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready confere banco e redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		WriteError(w, http.StatusServiceUnavailable, envelope.CodeInternal, "dependências indisponíveis", failures)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ListPlans publica o catálogo de planos.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	catalog := plan.Catalog()
	plans := make([]planView, 0, len(catalog))
	for _, p := range catalog {
		plans = append(plans, planView{Plan: p, AnnualPrice: p.AnnualPrice()})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

type planView struct {
	plan.Plan
	AnnualPrice decimal.Decimal `json:"annual_price"`
}
