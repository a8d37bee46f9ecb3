package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trafficmanagerhub/hub/internal/auth"
	"github.com/trafficmanagerhub/hub/internal/calculation"
	"github.com/trafficmanagerhub/hub/internal/client"
	"github.com/trafficmanagerhub/hub/internal/config"
	"github.com/trafficmanagerhub/hub/internal/dashboard"
	"github.com/trafficmanagerhub/hub/internal/diagnosis"
	"github.com/trafficmanagerhub/hub/internal/metrics"
	"github.com/trafficmanagerhub/hub/internal/plan"
	"github.com/trafficmanagerhub/hub/internal/previsibilidade"
	"github.com/trafficmanagerhub/hub/internal/service"
	"github.com/trafficmanagerhub/hub/internal/task"
)

type stubAuth struct {
	jwt         *auth.JWTManager
	registerErr error
	refreshErr  error
	loggedOut   string
	registered  service.RegisterInput
}

func (s *stubAuth) JWT() *auth.JWTManager { return s.jwt }

func (s *stubAuth) result() *service.LoginResult {
	return &service.LoginResult{
		AccessToken:   "access",
		RefreshToken:  "refresh-novo",
		RefreshExpiry: time.Now().Add(time.Hour),
		Profile:       &service.Profile{ID: uuid.NewString(), Name: "Ana", Email: "ana@hub.com", Plan: plan.CodeFree},
	}
}

func (s *stubAuth) Register(_ context.Context, input service.RegisterInput) (*service.LoginResult, error) {
	s.registered = input
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return s.result(), nil
}

func (s *stubAuth) Login(_ context.Context, email, password string) (*service.LoginResult, error) {
	if password != "segredo123" {
		return nil, service.ErrInvalidCredentials
	}
	return s.result(), nil
}

func (s *stubAuth) Refresh(_ context.Context, raw string) (*service.LoginResult, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.result(), nil
}

func (s *stubAuth) Logout(_ context.Context, raw string) error {
	s.loggedOut = raw
	return nil
}

func (s *stubAuth) GetMe(_ context.Context, accountID uuid.UUID) (*service.Profile, error) {
	return &service.Profile{ID: accountID.String(), Name: "Ana", Plan: plan.CodeFree}, nil
}

type stubUsage struct{}

func (stubUsage) Summary(context.Context, uuid.UUID) (plan.Plan, plan.Usage, error) {
	p, _ := plan.Lookup(plan.CodeFree)
	return p, plan.Usage{Clients: 4, Calculations: 20, Diagnoses: 1}, nil
}

type stubClients struct {
	createErr error
	filter    client.Filter
	items     map[uuid.UUID]client.Client
}

func (s *stubClients) Create(_ context.Context, input client.CreateInput) (*client.Client, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &client.Client{ID: uuid.New(), AccountID: input.AccountID, Name: input.Name, Status: client.NormalizeStatus(input.Status)}, nil
}

func (s *stubClients) List(_ context.Context, filter client.Filter) ([]client.Client, error) {
	s.filter = filter
	return []client.Client{}, nil
}

func (s *stubClients) Get(_ context.Context, accountID, id uuid.UUID) (*client.Client, error) {
	c, ok := s.items[id]
	if !ok || c.AccountID != accountID {
		return nil, client.ErrNotFound
	}
	return &c, nil
}

func (s *stubClients) Update(_ context.Context, input client.UpdateInput) (*client.Client, error) {
	return s.Get(context.Background(), input.AccountID, input.ID)
}

func (s *stubClients) Delete(_ context.Context, accountID, id uuid.UUID) error {
	_, err := s.Get(context.Background(), accountID, id)
	return err
}

type stubTasks struct {
	update task.UpdateInput
	filter task.Filter
}

func (s *stubTasks) Create(_ context.Context, input task.CreateInput) (*task.Task, error) {
	if input.Kind == task.KindMeeting && input.DueAt == nil {
		return nil, fmt.Errorf("%w: reunião exige data", task.ErrInvalidInput)
	}
	return &task.Task{ID: uuid.New(), AccountID: input.AccountID, Title: input.Title, Kind: input.Kind, DueAt: input.DueAt}, nil
}

func (s *stubTasks) List(_ context.Context, filter task.Filter) ([]task.Task, error) {
	s.filter = filter
	return nil, nil
}

func (s *stubTasks) Update(_ context.Context, input task.UpdateInput) (*task.Task, error) {
	s.update = input
	return &task.Task{ID: input.ID, AccountID: input.AccountID}, nil
}

func (s *stubTasks) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type stubCalculations struct {
	received previsibilidade.PartialInput
	clientID *uuid.UUID
}

func (s *stubCalculations) Simplified(_ context.Context, accountID uuid.UUID, clientID *uuid.UUID, in previsibilidade.PartialInput) (*calculation.Record, error) {
	s.received = in
	s.clientID = clientID
	if msgs := previsibilidade.ValidateSimplifiedInput(in); len(msgs) > 0 {
		return nil, &service.ValidationError{Messages: msgs}
	}
	result, _ := json.Marshal(previsibilidade.CalculateSimplified(in.Simplified()))
	return &calculation.Record{ID: uuid.New(), AccountID: accountID, ClientID: clientID, Mode: calculation.ModeSimplified, Result: result}, nil
}

func (s *stubCalculations) Complete(_ context.Context, accountID uuid.UUID, _ *uuid.UUID, in previsibilidade.PartialInput) (*calculation.Record, error) {
	return nil, fmt.Errorf("%w: calculations (20/20)", plan.ErrLimitReached)
}

func (s *stubCalculations) EstimateTraffic(spend float64) (previsibilidade.TrafficEstimate, error) {
	if msgs := previsibilidade.ValidateSpend(spend); len(msgs) > 0 {
		return previsibilidade.TrafficEstimate{}, &service.ValidationError{Messages: msgs}
	}
	return previsibilidade.EstimateTraffic(spend), nil
}

func (s *stubCalculations) List(context.Context, calculation.Filter) ([]calculation.Record, error) {
	return nil, fmt.Errorf("%w: modo desconhecido", calculation.ErrInvalidInput)
}

func (s *stubCalculations) Get(context.Context, uuid.UUID, uuid.UUID) (*calculation.Record, error) {
	return nil, calculation.ErrNotFound
}

type stubDiagnoses struct{}

func (stubDiagnoses) Generate(_ context.Context, accountID uuid.UUID, in diagnosis.Input) (*diagnosis.Diagnosis, error) {
	if strings.TrimSpace(in.Niche) == "" {
		return nil, fmt.Errorf("%w: nicho obrigatório", diagnosis.ErrInvalidInput)
	}
	return &diagnosis.Diagnosis{ID: uuid.New(), AccountID: accountID, Niche: in.Niche, Input: in, Source: diagnosis.SourceFallback}, nil
}

func (stubDiagnoses) List(context.Context, diagnosis.Filter) ([]diagnosis.Diagnosis, error) {
	return nil, errors.New("conexão perdida")
}

func (stubDiagnoses) Get(context.Context, uuid.UUID, uuid.UUID) (*diagnosis.Diagnosis, error) {
	return nil, diagnosis.ErrNotFound
}

type stubDashboard struct{}

func (stubDashboard) Summary(_ context.Context, accountID uuid.UUID) (*dashboard.Summary, error) {
	return &dashboard.Summary{TotalClients: 3, OpenTasks: 2}, nil
}

type testEnv struct {
	router  http.Handler
	auth    *stubAuth
	clients *stubClients
	tasks   *stubTasks
	calcs   *stubCalculations
	metrics *metrics.Metrics
	account uuid.UUID
	token   string
}

func newTestEnv(t *testing.T, checks map[string]Check) *testEnv {
	t.Helper()

	jwtMgr := auth.NewJWTManager(strings.Repeat("k", 32), time.Minute)
	env := &testEnv{
		auth:    &stubAuth{jwt: jwtMgr},
		clients: &stubClients{items: map[uuid.UUID]client.Client{}},
		tasks:   &stubTasks{},
		calcs:   &stubCalculations{},
		metrics: metrics.New(),
		account: uuid.New(),
	}

	token, _, err := jwtMgr.GenerateAccessToken(env.account, plan.CodeFree, []string{auth.RoleConsultant})
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	env.token = token

	cfg := &config.Config{
		AllowOrigins:    []string{"http://localhost:3000"},
		RateLimitPublic: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		RateLimitAuth:   config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}

	router, err := NewRouter(cfg, Dependencies{
		Auth:         env.auth,
		Usage:        stubUsage{},
		Clients:      env.clients,
		Tasks:        env.tasks,
		Calculations: env.calcs,
		Diagnoses:    stubDiagnoses{},
		Dashboard:    stubDashboard{},
		Metrics:      env.metrics,
		Checks:       checks,
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	env.router = router
	return env
}

func (e *testEnv) do(method, path, body string, authenticated bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type respEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) respEnvelope {
	t.Helper()
	var env respEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("resposta não é JSON: %v (%s)", err, rec.Body.String())
	}
	return env
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) respEnvelope {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d got %d: %s", status, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("expected error code %s got %s", code, rec.Body.String())
	}
	return env
}

func TestHealthPlansAndCPC(t *testing.T) {
	env := newTestEnv(t, nil)

	if rec := env.do(http.MethodGet, "/health", "", false); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200 got %d", rec.Code)
	}

	rec := env.do(http.MethodGet, "/plans", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("plans: expected 200 got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"code":"pro"`, `"monthly_price":"97"`, `"annual_price":"970"`} {
		if !strings.Contains(body, want) {
			t.Errorf("plans: faltou %s em %s", want, body)
		}
	}

	rec = env.do(http.MethodGet, "/calculator/cpc?spend=5000", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("cpc: expected 200 got %d", rec.Code)
	}
	var data struct {
		Traffic previsibilidade.TrafficEstimate `json:"traffic"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("cpc: %v", err)
	}
	if data.Traffic.CPC != 2.5 || data.Traffic.Clicks != 2000 {
		t.Fatalf("cpc: unexpected %+v", data.Traffic)
	}

	expectError(t, env.do(http.MethodGet, "/calculator/cpc?spend=abc", "", false), http.StatusBadRequest, "VALIDATION")
	expectError(t, env.do(http.MethodGet, "/calculator/cpc?spend=-1", "", false), http.StatusBadRequest, "VALIDATION")
	expectError(t, env.do(http.MethodGet, "/calculator/cpc?spend=0", "", false), http.StatusBadRequest, "VALIDATION")
}

func TestReady(t *testing.T) {
	healthy := newTestEnv(t, map[string]Check{
		"postgres": func(context.Context) error { return nil },
	})
	if rec := healthy.do(http.MethodGet, "/ready", "", false); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	broken := newTestEnv(t, map[string]Check{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	env := expectError(t, broken.do(http.MethodGet, "/ready", "", false), http.StatusServiceUnavailable, "INTERNAL")
	if !strings.Contains(string(env.Error.Details), "redis") || strings.Contains(string(env.Error.Details), "postgres") {
		t.Fatalf("unexpected details %s", env.Error.Details)
	}
}

func TestPrivateRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/me", "/clients", "/tasks", "/calculator/history", "/diagnoses", "/dashboard"} {
		expectError(t, env.do(http.MethodGet, path, "", false), http.StatusUnauthorized, "AUTH")
	}
	expectError(t, env.do(http.MethodPost, "/calculator/simplified", `{}`, false), http.StatusUnauthorized, "AUTH")
}

func TestRegisterAndRefresh(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/auth/register", `{"name":" Ana ","email":" ANA@Hub.com ","password":"segredo123"}`, false)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if env.auth.registered.Email != "ana@hub.com" || env.auth.registered.Name != "Ana" {
		t.Fatalf("register: entrada não normalizada %+v", env.auth.registered)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != refreshCookie || !cookies[0].HttpOnly || cookies[0].Value != "refresh-novo" {
		t.Fatalf("register: cookie inesperado %+v", cookies)
	}

	env.auth.registerErr = service.ErrEmailTaken
	expectError(t, env.do(http.MethodPost, "/auth/register", `{"name":"Ana","email":"ana@hub.com","password":"segredo123"}`, false), http.StatusConflict, "CONFLICT")

	env.auth.registerErr = &service.ValidationError{Messages: []string{"senha deve ter pelo menos 8 caracteres"}}
	expectError(t, env.do(http.MethodPost, "/auth/register", `{"name":"Ana","email":"ana@hub.com","password":"123"}`, false), http.StatusBadRequest, "VALIDATION")

	expectError(t, env.do(http.MethodPost, "/auth/login", `{"email":"ana@hub.com","password":"errada"}`, false), http.StatusUnauthorized, "AUTH")
	expectError(t, env.do(http.MethodPost, "/auth/login", `{"email":""}`, false), http.StatusBadRequest, "VALIDATION")

	expectError(t, env.do(http.MethodPost, "/auth/refresh", "", false), http.StatusUnauthorized, "AUTH")

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookie, Value: "antigo"})
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200 got %d", rec.Code)
	}

	env.auth.refreshErr = service.ErrRefreshInvalid
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	expectError(t, rec, http.StatusUnauthorized, "AUTH")
	if cookies := rec.Result().Cookies(); len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("refresh inválido deveria limpar cookie: %+v", cookies)
	}

	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookie, Value: "atual"})
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || env.auth.loggedOut != "atual" {
		t.Fatalf("logout: status %d revogado %q", rec.Code, env.auth.loggedOut)
	}
}

func TestMeIncludesUsage(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/me", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var data struct {
		User      service.Profile       `json:"user"`
		Usage     plan.Usage            `json:"usage"`
		Remaining map[plan.Resource]int `json:"remaining"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.User.ID != env.account.String() {
		t.Fatalf("expected account %s got %s", env.account, data.User.ID)
	}
	if data.Remaining[plan.ResourceClients] != 6 || data.Remaining[plan.ResourceCalculations] != 0 {
		t.Fatalf("unexpected remaining %v", data.Remaining)
	}
}

func TestClientRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/clients", `{"name":"Padaria Pão Quente"}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d", rec.Code)
	}

	env.clients.createErr = fmt.Errorf("%w: clients (10/10)", plan.ErrLimitReached)
	expectError(t, env.do(http.MethodPost, "/clients", `{"name":"Outra"}`, true), http.StatusPaymentRequired, "PLAN_LIMIT")

	env.clients.createErr = client.ErrInvalidStatus
	expectError(t, env.do(http.MethodPost, "/clients", `{"name":"Outra","status":"vip"}`, true), http.StatusBadRequest, "VALIDATION")

	expectError(t, env.do(http.MethodPost, "/clients", `{"name":`, true), http.StatusBadRequest, "VALIDATION")

	rec = env.do(http.MethodGet, "/clients?status=lead,active&status=paused&search=+p%C3%A3o+&limit=20&offset=-5", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", rec.Code)
	}
	f := env.clients.filter
	if f.AccountID != env.account || len(f.Status) != 3 || f.Search != "pão" || f.Limit != 20 || f.Offset != 0 {
		t.Fatalf("list: filtro inesperado %+v", f)
	}

	expectError(t, env.do(http.MethodGet, "/clients/nao-e-uuid", "", true), http.StatusBadRequest, "VALIDATION")
	expectError(t, env.do(http.MethodGet, "/clients/"+uuid.NewString(), "", true), http.StatusNotFound, "NOT_FOUND")

	other := uuid.New()
	id := uuid.New()
	env.clients.items[id] = client.Client{ID: id, AccountID: other, Name: "De outra conta"}
	expectError(t, env.do(http.MethodDelete, "/clients/"+id.String(), "", true), http.StatusNotFound, "NOT_FOUND")

	mine := uuid.New()
	env.clients.items[mine] = client.Client{ID: mine, AccountID: env.account, Name: "Minha"}
	if rec := env.do(http.MethodPatch, "/clients/"+mine.String(), `{"notes":""}`, true); rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d", rec.Code)
	}
}

func TestTaskRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	expectError(t, env.do(http.MethodPost, "/tasks", `{"title":"Call","kind":"meeting"}`, true), http.StatusBadRequest, "VALIDATION")
	expectError(t, env.do(http.MethodPost, "/tasks", `{"title":"Call","due_at":"amanhã"}`, true), http.StatusBadRequest, "VALIDATION")

	rec := env.do(http.MethodPost, "/tasks", `{"title":"Call","kind":"meeting","due_at":"2026-11-03T14:00:00Z"}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	id := uuid.New()
	rec = env.do(http.MethodPatch, "/tasks/"+id.String(), `{"status":"done","due_at":"","client_id":""}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d", rec.Code)
	}
	u := env.tasks.update
	if u.ID != id || !u.ClearDue || !u.ClearClient || u.Status == nil || *u.Status != "done" {
		t.Fatalf("update: entrada inesperada %+v", u)
	}

	rec = env.do(http.MethodPatch, "/tasks/"+id.String(), `{"due_at":"2026-11-10"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d", rec.Code)
	}
	if u := env.tasks.update; u.ClearDue || u.DueAt == nil || u.DueAt.Day() != 10 || u.ClientID != nil || u.ClearClient {
		t.Fatalf("update: entrada inesperada %+v", u)
	}

	rec = env.do(http.MethodGet, "/tasks?kind=meeting&due_from=2026-11-01&due_to=2026-11-30&status=pending", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", rec.Code)
	}
	if f := env.tasks.filter; f.Kind != "meeting" || f.DueFrom == nil || f.DueTo == nil || len(f.Status) != 1 {
		t.Fatalf("list: filtro inesperado %+v", f)
	}
	expectError(t, env.do(http.MethodGet, "/tasks?client_id=xyz", "", true), http.StatusBadRequest, "VALIDATION")
}

func TestCalculatorRoutes(t *testing.T) {
	env := newTestEnv(t, nil)
	clientID := uuid.New()

	rec := env.do(http.MethodPost, "/calculator/simplified",
		`{"client_id":"`+clientID.String()+`","spend":1000,"costPerLead":10,"conversionRate":2,"averageTicket":100}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("simplified: expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if env.calcs.clientID == nil || *env.calcs.clientID != clientID || *env.calcs.received.Spend != 1000 {
		t.Fatalf("simplified: entrada não decodificada %+v", env.calcs.received)
	}

	var data struct {
		Calculation struct {
			Result previsibilidade.SimplifiedResult `json:"result"`
		} `json:"calculation"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Calculation.Result.ROI != -80 || data.Calculation.Result.LeadsGenerated != 100 {
		t.Fatalf("simplified: resultado inesperado %+v", data.Calculation.Result)
	}

	env2 := expectError(t, env.do(http.MethodPost, "/calculator/simplified", `{"spend":0,"costPerLead":10,"conversionRate":2,"averageTicket":100}`, true), http.StatusBadRequest, "VALIDATION")
	var details []string
	if err := json.Unmarshal(env2.Error.Details, &details); err != nil || len(details) != 1 || details[0] != previsibilidade.MsgSpend {
		t.Fatalf("validation details: %s", env2.Error.Details)
	}

	expectError(t, env.do(http.MethodPost, "/calculator/simplified", `{"client_id":"abc"}`, true), http.StatusBadRequest, "VALIDATION")
	expectError(t, env.do(http.MethodPost, "/calculator/complete", `{"spend":1000}`, true), http.StatusPaymentRequired, "PLAN_LIMIT")
	expectError(t, env.do(http.MethodGet, "/calculator/history?mode=weekly", "", true), http.StatusBadRequest, "VALIDATION")
	expectError(t, env.do(http.MethodGet, "/calculator/history/"+uuid.NewString(), "", true), http.StatusNotFound, "NOT_FOUND")
}

func TestDiagnosisAndDashboardRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	clientID := uuid.NewString()
	rec := env.do(http.MethodPost, "/diagnoses", `{"niche":"odontologia","monthlyBudget":3000,"client_id":"`+clientID+`"}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("diagnosis: expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"source":"fallback"`) {
		t.Fatalf("diagnosis: unexpected body %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"client_id":"`+clientID+`"`) {
		t.Fatalf("diagnosis: client_id não decodificado %s", rec.Body.String())
	}

	expectError(t, env.do(http.MethodPost, "/diagnoses", `{"niche":" "}`, true), http.StatusBadRequest, "VALIDATION")
	expectError(t, env.do(http.MethodGet, "/diagnoses", "", true), http.StatusInternalServerError, "INTERNAL")
	expectError(t, env.do(http.MethodGet, "/diagnoses/"+uuid.NewString(), "", true), http.StatusNotFound, "NOT_FOUND")

	rec = env.do(http.MethodGet, "/dashboard", "", true)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"total_clients":3`) {
		t.Fatalf("dashboard: %d %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	env.do(http.MethodGet, "/health", "", false)
	env.do(http.MethodGet, "/clients/"+uuid.NewString(), "", true)

	rec := env.do(http.MethodGet, "/metrics", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`hub_http_requests_total{method="GET",route="/health",status="200"} 1`,
		`hub_http_requests_total{method="GET",route="/clients/{id}",status="404"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("faltou %s", want)
		}
	}
}
