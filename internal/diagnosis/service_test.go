package diagnosis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trafficmanagerhub/hub/internal/plan"
)

type stubStore struct {
	saved []Diagnosis
}

func (s *stubStore) Insert(ctx context.Context, d Diagnosis) (*Diagnosis, error) {
	s.saved = append(s.saved, d)
	return &d, nil
}

func (s *stubStore) Get(ctx context.Context, accountID, id uuid.UUID) (*Diagnosis, error) {
	return nil, ErrNotFound
}

func (s *stubStore) List(ctx context.Context, filter Filter) ([]Diagnosis, error) {
	return s.saved, nil
}

func (s *stubStore) Count(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	return len(s.saved), nil
}

type stubQuota struct {
	err        error
	reserveErr error
	checks     int
	calls      int
}

func (q *stubQuota) Enforce(ctx context.Context, accountID uuid.UUID, resource plan.Resource) error {
	q.checks++
	return q.err
}

func (q *stubQuota) Reserve(ctx context.Context, accountID uuid.UUID, resource plan.Resource, create func(ctx context.Context) error) error {
	q.calls++
	if q.err != nil {
		return q.err
	}
	if q.reserveErr != nil {
		return q.reserveErr
	}
	return create(ctx)
}

type stubProvider struct {
	out    string
	err    error
	calls  int
	prompt string
}

func (p *stubProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	p.calls++
	p.prompt = prompt
	return p.out, p.err
}

func (p *stubProvider) Model() string { return "stub-model" }

type memoryCache struct {
	items map[string]Generated
	ttl   time.Duration
}

func (c *memoryCache) Load(ctx context.Context, key string) (*Generated, error) {
	g, ok := c.items[key]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (c *memoryCache) Store(ctx context.Context, key string, g Generated, ttl time.Duration) error {
	if c.items == nil {
		c.items = map[string]Generated{}
	}
	c.items[key] = g
	c.ttl = ttl
	return nil
}

type stubSite struct {
	calls int
}

func (s *stubSite) Fetch(ctx context.Context, pageURL string) (*SiteContext, error) {
	s.calls++
	return &SiteContext{URL: pageURL, Title: "Estúdio Pilates Vida"}, nil
}

const aiReply = `{"summary":"Invista em busca local.","audience":"Mulheres 30-55","channels":["Google Ads"],"budgetSplit":[{"channel":"Google Ads","percent":100}],"kpis":["CPL"]}`

func newTestService(t *testing.T, provider Provider, cache Cache, sources *[]string) (*Service, *stubStore, *stubQuota) {
	t.Helper()
	prompts, err := LoadPrompts()
	if err != nil {
		t.Fatalf("prompts: %v", err)
	}
	st := &stubStore{}
	quota := &stubQuota{}
	svc := NewService(nil, quota, nil, provider, prompts, Options{
		Cache:     cache,
		CacheTTL:  time.Hour,
		Site:      &stubSite{},
		Timeout:   time.Second,
		Generated: func(source string) { *sources = append(*sources, source) },
	})
	svc.repo = st
	return svc, st, quota
}

func TestGenerateWithAIAndCache(t *testing.T) {
	var sources []string
	provider := &stubProvider{out: aiReply}
	cache := &memoryCache{}
	svc, st, quota := newTestService(t, provider, cache, &sources)
	ctx := context.Background()
	account := uuid.New()
	budget := 1000.0

	in := Input{Niche: " Pilates ", City: "Goiânia", MonthlyBudget: &budget, Website: "pilatesvida.com.br"}
	first, err := svc.Generate(ctx, account, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Source != SourceAI || first.Model != "stub-model" || first.Niche != "Pilates" {
		t.Fatalf("unexpected diagnosis %+v", first)
	}
	if first.Report.Traffic == nil || first.Report.Traffic.Clicks != 500 {
		t.Fatalf("expected traffic estimate, got %+v", first.Report.Traffic)
	}
	if first.HTML == "" {
		t.Fatal("expected html")
	}
	if len(cache.items) != 1 || cache.ttl != time.Hour {
		t.Fatalf("expected resposta em cache, got %d itens ttl %s", len(cache.items), cache.ttl)
	}

	second, err := svc.Generate(ctx, account, Input{Niche: "pilates", City: "goiânia", MonthlyBudget: &budget, Website: "https://pilatesvida.com.br"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Source != SourceCache {
		t.Fatalf("expected cache hit got %s", second.Source)
	}
	if provider.calls != 1 || quota.calls != 1 {
		t.Fatalf("cache não deveria chamar IA nem consumir cota: provider=%d quota=%d", provider.calls, quota.calls)
	}
	if len(st.saved) != 2 {
		t.Fatalf("expected 2 registros got %d", len(st.saved))
	}
	if len(sources) != 2 || sources[0] != SourceAI || sources[1] != SourceCache {
		t.Fatalf("unexpected metric sources %v", sources)
	}
}

func TestGenerateFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
	}{
		{"provedor desligado", NoopProvider{}},
		{"erro do provedor", &stubProvider{err: errors.New("timeout")}},
		{"resposta inútil", &stubProvider{out: "não sei"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var sources []string
			cache := &memoryCache{}
			svc, st, _ := newTestService(t, tc.provider, cache, &sources)

			d, err := svc.Generate(context.Background(), uuid.New(), Input{Niche: "Petshop"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Source != SourceFallback || d.Model != "" {
				t.Fatalf("expected fallback got %s/%s", d.Source, d.Model)
			}
			if len(d.Report.Channels) == 0 || d.HTML == "" {
				t.Fatalf("fallback incompleto: %+v", d.Report)
			}
			if len(cache.items) != 0 {
				t.Fatal("fallback não deveria ir para o cache")
			}
			if len(st.saved) != 1 {
				t.Fatalf("expected 1 registro got %d", len(st.saved))
			}
		})
	}
}

func TestGenerateValidationAndLimit(t *testing.T) {
	var sources []string
	provider := &stubProvider{out: aiReply}
	svc, st, quota := newTestService(t, provider, nil, &sources)
	ctx := context.Background()

	negative := -5.0
	for _, in := range []Input{{Niche: " "}, {Niche: "Loja", MonthlyBudget: &negative}, {Niche: "Loja", Website: "ftp://loja"}} {
		if _, err := svc.Generate(ctx, uuid.New(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%+v: expected ErrInvalidInput got %v", in, err)
		}
	}

	quota.err = plan.ErrLimitReached
	if _, err := svc.Generate(ctx, uuid.New(), Input{Niche: "Loja"}); !errors.Is(err, plan.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached got %v", err)
	}
	if provider.calls != 0 || len(st.saved) != 0 {
		t.Fatal("nada deveria ser gerado ou gravado")
	}
}

func TestGenerateLimitReachedWhileGenerating(t *testing.T) {
	var sources []string
	provider := &stubProvider{out: aiReply}
	svc, st, quota := newTestService(t, provider, nil, &sources)
	quota.reserveErr = plan.ErrLimitReached

	if _, err := svc.Generate(context.Background(), uuid.New(), Input{Niche: "Loja"}); !errors.Is(err, plan.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached got %v", err)
	}
	if quota.checks != 1 || quota.calls != 1 {
		t.Fatalf("expected checagem prévia e reserva: checks=%d calls=%d", quota.checks, quota.calls)
	}
	if len(st.saved) != 0 || len(sources) != 0 {
		t.Fatalf("nada deveria ser gravado: saved=%d sources=%v", len(st.saved), sources)
	}
}

func TestCacheKeyIgnoresClientAndCase(t *testing.T) {
	id := uuid.New()
	a := CacheKey(Input{Niche: "Pilates", City: "Goiânia", ClientID: &id})
	b := CacheKey(Input{Niche: "pilates", City: "goiânia"})
	if a != b {
		t.Fatalf("chaves deveriam coincidir: %s != %s", a, b)
	}
	if c := CacheKey(Input{Niche: "pilates", City: "recife"}); c == a {
		t.Fatal("cidades diferentes deveriam gerar chaves diferentes")
	}
}
