// Package plan descreve os planos comerciais e os limites de uso de cada um.
package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownPlan indica código de plano inexistente.
	ErrUnknownPlan = errors.New("plano desconhecido")
	// ErrLimitReached indica que o recurso atingiu o limite do plano.
	ErrLimitReached = errors.New("limite do plano atingido")
)

// Resource identifica um recurso contabilizado pelo plano.
type Resource string

const (
	ResourceClients      Resource = "clients"
	ResourceCalculations Resource = "calculations"
	ResourceDiagnoses    Resource = "diagnoses"
)

const (
	CodeFree   = "free"
	CodePro    = "pro"
	CodeAgency = "agency"
)

// Limits guarda o teto de cada recurso; zero significa ilimitado.
type Limits struct {
	Clients              int `json:"clients"`
	CalculationsPerMonth int `json:"calculations_per_month"`
	DiagnosesPerMonth    int `json:"diagnoses_per_month"`
}

// Plan é uma oferta comercial.
type Plan struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	Currency     string          `json:"currency"`
	Limits       Limits          `json:"limits"`
}

var catalog = []Plan{
	{
		Code:         CodeFree,
		Name:         "Gratuito",
		MonthlyPrice: decimal.Zero,
		Currency:     "BRL",
		Limits:       Limits{Clients: 10, CalculationsPerMonth: 20, DiagnosesPerMonth: 3},
	},
	{
		Code:         CodePro,
		Name:         "Profissional",
		MonthlyPrice: decimal.RequireFromString("97.00"),
		Currency:     "BRL",
		Limits:       Limits{Clients: 200, CalculationsPerMonth: 500, DiagnosesPerMonth: 50},
	},
	{
		Code:         CodeAgency,
		Name:         "Agência",
		MonthlyPrice: decimal.RequireFromString("297.00"),
		Currency:     "BRL",
		Limits:       Limits{Clients: 0, CalculationsPerMonth: 0, DiagnosesPerMonth: 300},
	},
}

// Catalog devolve cópia dos planos na ordem de exibição.
func Catalog() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup encontra plano pelo código.
func Lookup(code string) (Plan, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, p := range catalog {
		if p.Code == code {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("%w: %s", ErrUnknownPlan, code)
}

// Limit devolve o teto do recurso.
func (p Plan) Limit(resource Resource) int {
	switch resource {
	case ResourceClients:
		return p.Limits.Clients
	case ResourceCalculations:
		return p.Limits.CalculationsPerMonth
	case ResourceDiagnoses:
		return p.Limits.DiagnosesPerMonth
	default:
		return 0
	}
}

// Check retorna ErrLimitReached se used já alcançou o teto do recurso.
func (p Plan) Check(resource Resource, used int) error {
	limit := p.Limit(resource)
	if limit > 0 && used >= limit {
		return fmt.Errorf("%w: %s (%d/%d)", ErrLimitReached, resource, used, limit)
	}
	return nil
}

// AnnualPrice aplica dois meses de desconto sobre doze mensalidades.
func (p Plan) AnnualPrice() decimal.Decimal {
	return p.MonthlyPrice.Mul(decimal.NewFromInt(10)).Round(2)
}

// PeriodStart devolve o primeiro instante do mês corrente (UTC), base da
// contagem mensal.
func PeriodStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Usage é o consumo atual da conta.
type Usage struct {
	Clients      int `json:"clients"`
	Calculations int `json:"calculations"`
	Diagnoses    int `json:"diagnoses"`
}

// Remaining devolve quanto resta de cada recurso; -1 significa ilimitado.
func (p Plan) Remaining(u Usage) map[Resource]int {
	used := map[Resource]int{
		ResourceClients:      u.Clients,
		ResourceCalculations: u.Calculations,
		ResourceDiagnoses:    u.Diagnoses,
	}
	out := make(map[Resource]int, len(used))
	for res, n := range used {
		limit := p.Limit(res)
		if limit == 0 {
			out[res] = -1
			continue
		}
		left := limit - n
		if left < 0 {
			left = 0
		}
		out[res] = left
	}
	return out
}
