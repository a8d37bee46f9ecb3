package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/trafficmanagerhub/hub/internal/http/envelope"
)

// Escopos de limitação devolvidos em error.details.
const (
	ScopeIP      = "ip"
	ScopeAccount = "account"
)

// RateLimiter guarda um token bucket por chave; chaves ociosas expiram.
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	maxAge time.Duration
	now    func() time.Time

	mu    sync.Mutex
	store map[string]*limiterEntry
}

type limiterEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewRateLimiter cria limiter com reqPerSec de reposição e burst de folga.
func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:  rate.Limit(reqPerSec),
		burst:  burst,
		maxAge: 10 * time.Minute,
		now:    time.Now,
		store:  make(map[string]*limiterEntry),
	}
}

func (l *RateLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry, ok := l.store[key]; ok {
		entry.seen = now
		return entry.limiter
	}

	for k, entry := range l.store {
		if now.Sub(entry.seen) > l.maxAge {
			delete(l.store, k)
		}
	}

	lim := rate.NewLimiter(l.limit, l.burst)
	l.store[key] = &limiterEntry{limiter: lim, seen: now}
	return lim
}

// wait devolve zero quando a requisição pode seguir, ou o tempo até o
// próximo token.
func (l *RateLimiter) wait(key string) time.Duration {
	res := l.get(key).ReserveN(l.now(), 1)
	if !res.OK() {
		return time.Second
	}
	delay := res.DelayFrom(l.now())
	if delay > 0 {
		res.CancelAt(l.now())
	}
	return delay
}

// LimitByKey limita por chave; keyFunc sem chave deixa a requisição passar.
func (l *RateLimiter) LimitByKey(scope string, keyFunc func(*http.Request) (string, bool)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := keyFunc(r)
			if !ok || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if delay := l.wait(key); delay > 0 {
				retry := int(math.Ceil(delay.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				envelope.Error(w, http.StatusTooManyRequests, envelope.CodeRateLimit, "limite de requisições excedido", map[string]any{
					"scope":               scope,
					"retry_after_seconds": retry,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IPRateLimit limita pelo IP do cliente. Espera chimiddleware.RealIP antes,
// que já reescreve RemoteAddr a partir dos cabeçalhos do proxy.
func IPRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return limiter.LimitByKey(ScopeIP, func(r *http.Request) (string, bool) {
		return clientIP(r), true
	})
}

// UserRateLimit limita pela conta autenticada; roda depois de Auth.
func UserRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return limiter.LimitByKey(ScopeAccount, func(r *http.Request) (string, bool) {
		subject := GetSubject(r.Context())
		return subject, subject != ""
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
