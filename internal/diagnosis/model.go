// Package diagnosis gera diagnósticos de nicho para campanhas de tráfego
// pago, com apoio de um provedor de IA e um plano B determinístico.
package diagnosis

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trafficmanagerhub/hub/internal/previsibilidade"
)

var (
	ErrNotFound         = errors.New("diagnóstico não encontrado")
	ErrInvalidInput     = errors.New("dados do diagnóstico inválidos")
	ErrProviderDisabled = errors.New("provedor de IA desativado")
	ErrEmptyReport      = errors.New("resposta da IA sem conteúdo")
)

// Origem do relatório.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
	SourceCache    = "cache"
)

// Input descreve o negócio a diagnosticar.
type Input struct {
	Niche          string     `json:"niche"`
	City           string     `json:"city,omitempty"`
	TargetAudience string     `json:"targetAudience,omitempty"`
	MonthlyBudget  *float64   `json:"monthlyBudget,omitempty"`
	AverageTicket  *float64   `json:"averageTicket,omitempty"`
	Website        string     `json:"website,omitempty"`
	ClientID       *uuid.UUID `json:"client_id,omitempty"`
}

// BudgetShare é a fatia sugerida do investimento para um canal.
type BudgetShare struct {
	Channel string  `json:"channel"`
	Percent float64 `json:"percent"`
}

// Report é o conteúdo estruturado do diagnóstico.
type Report struct {
	Summary     string                           `json:"summary"`
	Audience    string                           `json:"audience"`
	PainPoints  []string                         `json:"painPoints"`
	Channels    []string                         `json:"channels"`
	Offers      []string                         `json:"offers"`
	BudgetSplit []BudgetShare                    `json:"budgetSplit"`
	KPIs        []string                         `json:"kpis"`
	Risks       []string                         `json:"risks"`
	Traffic     *previsibilidade.TrafficEstimate `json:"traffic,omitempty"`
}

// Diagnosis é um diagnóstico gravado para a conta.
type Diagnosis struct {
	ID        uuid.UUID  `json:"id"`
	AccountID uuid.UUID  `json:"account_id"`
	ClientID  *uuid.UUID `json:"client_id,omitempty"`
	Niche     string     `json:"niche"`
	Input     Input      `json:"input"`
	Report    Report     `json:"report"`
	HTML      string     `json:"html"`
	Source    string     `json:"source"`
	Model     string     `json:"model"`
	CreatedAt time.Time  `json:"created_at"`
}

// Generated é o resultado reaproveitável de uma geração, guardado em cache.
type Generated struct {
	Report Report `json:"report"`
	HTML   string `json:"html"`
	Source string `json:"source"`
	Model  string `json:"model"`
}

// Filter pagina a listagem de diagnósticos.
type Filter struct {
	AccountID uuid.UUID
	ClientID  *uuid.UUID
	Limit     int
	Offset    int
}
