package previsibilidade

// Scenario identifica uma projeção do modo completo.
type Scenario string

const (
	ScenarioPessimistic Scenario = "pessimistic"
	ScenarioRealistic   Scenario = "realistic"
	ScenarioOptimistic  Scenario = "optimistic"
)

// SimplifiedInput reúne as premissas do funil no modo simplificado.
type SimplifiedInput struct {
	Spend          float64 `json:"spend"`
	CostPerLead    float64 `json:"costPerLead"`
	ConversionRate float64 `json:"conversionRate"`
	AverageTicket  float64 `json:"averageTicket"`
}

// CompleteInput acrescenta margem e recompra ao modo simplificado.
type CompleteInput struct {
	SimplifiedInput
	ProfitMargin    float64 `json:"profitMargin"`
	RepeatPurchases float64 `json:"repeatPurchases"`
}

// SimplifiedResult é a estimativa pontual do modo simplificado.
type SimplifiedResult struct {
	Spend           float64 `json:"spend"`
	LeadsGenerated  float64 `json:"leadsGenerated"`
	SalesForecast   float64 `json:"salesForecast"`
	ForecastRevenue float64 `json:"forecastRevenue"`
	ROI             float64 `json:"roi"`
}

// ScenarioResult é a projeção de um cenário do modo completo.
type ScenarioResult struct {
	Scenario  Scenario `json:"scenario"`
	Leads     float64  `json:"leads"`
	Sales     float64  `json:"sales"`
	Revenue   float64  `json:"revenue"`
	CAC       float64  `json:"cac"`
	LTV       float64  `json:"ltv"`
	NetProfit float64  `json:"netProfit"`
	ROI       float64  `json:"roi"`
}

// PartialInput representa premissas ainda não validadas, vindas de
// formulários, corpo HTTP ou flags de linha de comando.
type PartialInput struct {
	Spend           *float64 `json:"spend,omitempty"`
	CostPerLead     *float64 `json:"costPerLead,omitempty"`
	ConversionRate  *float64 `json:"conversionRate,omitempty"`
	AverageTicket   *float64 `json:"averageTicket,omitempty"`
	ProfitMargin    *float64 `json:"profitMargin,omitempty"`
	RepeatPurchases *float64 `json:"repeatPurchases,omitempty"`
}

// Simplified converte a entrada parcial. Campos ausentes viram zero, portanto
// só deve ser chamada após ValidateSimplifiedInput.
func (p PartialInput) Simplified() SimplifiedInput {
	return SimplifiedInput{
		Spend:          deref(p.Spend),
		CostPerLead:    deref(p.CostPerLead),
		ConversionRate: deref(p.ConversionRate),
		AverageTicket:  deref(p.AverageTicket),
	}
}

// Complete converte a entrada parcial para o modo completo.
func (p PartialInput) Complete() CompleteInput {
	return CompleteInput{
		SimplifiedInput: p.Simplified(),
		ProfitMargin:    deref(p.ProfitMargin),
		RepeatPurchases: deref(p.RepeatPurchases),
	}
}

// Multipliers define o fator aplicado a cada cenário.
type Multipliers struct {
	Pessimistic float64 `json:"pessimistic"`
	Realistic   float64 `json:"realistic"`
	Optimistic  float64 `json:"optimistic"`
}

// DefaultMultipliers são os fatores fixos do produto.
var DefaultMultipliers = Multipliers{
	Pessimistic: 0.7,
	Realistic:   1.0,
	Optimistic:  1.3,
}

func (m Multipliers) ordered() [3]struct {
	scenario Scenario
	factor   float64
} {
	return [3]struct {
		scenario Scenario
		factor   float64
	}{
		{ScenarioPessimistic, m.Pessimistic},
		{ScenarioRealistic, m.Realistic},
		{ScenarioOptimistic, m.Optimistic},
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Float devolve ponteiro para o valor, útil ao montar PartialInput.
func Float(v float64) *float64 {
	return &v
}
