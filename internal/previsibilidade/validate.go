package previsibilidade

import "math"

// Mensagens de validação exibidas ao usuário.
const (
	MsgSpend           = "Investment must be greater than zero"
	MsgCostPerLead     = "Cost per Lead must be greater than zero"
	MsgConversionRate  = "Conversion Rate must be between 0 and 100%"
	MsgAverageTicket   = "Average Ticket must be greater than zero"
	MsgProfitMargin    = "Profit Margin must be between 0 and 100%"
	MsgRepeatPurchases = "Repeat Purchases must be greater than zero"
	MsgOutOfRange      = "Inputs produce values out of range"
)

// MaxValue é o maior valor aceito em qualquer premissa. Acima disso os
// resultados deixam de ser representáveis após o arredondamento.
const MaxValue = 1e12

// ValidateSimplifiedInput retorna todas as violações encontradas. Slice vazio
// significa entrada válida.
func ValidateSimplifiedInput(p PartialInput) []string {
	msgs := make([]string, 0, 4)
	if !positive(p.Spend) {
		msgs = append(msgs, MsgSpend)
	}
	if !positive(p.CostPerLead) {
		msgs = append(msgs, MsgCostPerLead)
	}
	if !percent(p.ConversionRate) {
		msgs = append(msgs, MsgConversionRate)
	}
	if !positive(p.AverageTicket) {
		msgs = append(msgs, MsgAverageTicket)
	}
	return msgs
}

// ValidateCompleteInput aplica as regras do modo simplificado mais margem e
// recompra.
func ValidateCompleteInput(p PartialInput) []string {
	msgs := ValidateSimplifiedInput(p)
	if !percent(p.ProfitMargin) {
		msgs = append(msgs, MsgProfitMargin)
	}
	if !positive(p.RepeatPurchases) {
		msgs = append(msgs, MsgRepeatPurchases)
	}
	return msgs
}

// ValidateSpend valida o investimento usado na estimativa de tráfego.
func ValidateSpend(spend float64) []string {
	if !positive(&spend) {
		return []string{MsgSpend}
	}
	return nil
}

// Finite indica se todos os campos do resultado são representáveis.
func (r SimplifiedResult) Finite() bool {
	return finite(r.Spend) && finite(r.LeadsGenerated) && finite(r.SalesForecast) &&
		finite(r.ForecastRevenue) && finite(r.ROI)
}

// Finite indica se todos os campos do cenário são representáveis.
func (r ScenarioResult) Finite() bool {
	return finite(r.Leads) && finite(r.Sales) && finite(r.Revenue) && finite(r.CAC) &&
		finite(r.LTV) && finite(r.NetProfit) && finite(r.ROI)
}

func positive(v *float64) bool {
	return v != nil && finite(*v) && *v > 0 && *v <= MaxValue
}

func percent(v *float64) bool {
	return positive(v) && *v <= 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
