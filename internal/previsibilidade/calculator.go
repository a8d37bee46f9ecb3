// Package previsibilidade projeta resultados de funil de marketing (leads,
// vendas, receita e ROI) a partir de premissas de investimento.
//
// As funções são puras: não fazem I/O, não guardam estado e podem ser
// chamadas concorrentemente. As entradas devem passar pela validação antes do
// cálculo; valores fora do domínio produzem números não finitos.
package previsibilidade

import "math"

// CalculateSimplified calcula a estimativa pontual do modo simplificado.
func CalculateSimplified(in SimplifiedInput) SimplifiedResult {
	leads := in.Spend / in.CostPerLead
	sales := leads * (in.ConversionRate / 100)
	revenue := sales * in.AverageTicket
	roi := ((revenue - in.Spend) / in.Spend) * 100

	return SimplifiedResult{
		Spend:           round2(in.Spend),
		LeadsGenerated:  round2(leads),
		SalesForecast:   round2(sales),
		ForecastRevenue: round2(revenue),
		ROI:             round2(roi),
	}
}

// CalculateComplete projeta os cenários pessimista, realista e otimista com
// os multiplicadores padrão.
func CalculateComplete(in CompleteInput) [3]ScenarioResult {
	return CalculateCompleteWith(in, DefaultMultipliers)
}

// CalculateCompleteWith projeta os três cenários, sempre nesta ordem:
// pessimista, realista, otimista.
func CalculateCompleteWith(in CompleteInput, m Multipliers) [3]ScenarioResult {
	var out [3]ScenarioResult
	for i, s := range m.ordered() {
		out[i] = projectScenario(in, s.scenario, s.factor)
	}
	return out
}

func projectScenario(in CompleteInput, scenario Scenario, m float64) ScenarioResult {
	// multiplicador maior barateia o lead e melhora conversão e ticket
	adjustedCostPerLead := in.CostPerLead / m
	adjustedConversionRate := in.ConversionRate * m
	adjustedTicket := in.AverageTicket * m

	leads := in.Spend / adjustedCostPerLead
	sales := leads * (adjustedConversionRate / 100)
	revenue := sales * adjustedTicket
	// CAC deriva de spend/leads, nunca de adjustedCostPerLead.
	cac := in.Spend / leads
	ltv := adjustedTicket * in.RepeatPurchases
	netProfit := revenue*(in.ProfitMargin/100) - in.Spend
	roi := (netProfit / in.Spend) * 100

	return ScenarioResult{
		Scenario:  scenario,
		Leads:     round2(leads),
		Sales:     round2(sales),
		Revenue:   round2(revenue),
		CAC:       round2(cac),
		LTV:       round2(ltv),
		NetProfit: round2(netProfit),
		ROI:       round2(roi),
	}
}

// round2 arredonda para duas casas, metade para longe do zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
