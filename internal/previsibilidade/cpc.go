package previsibilidade

// EstimateCPC devolve o custo por clique estimado para o investimento mensal.
// As faixas incluem o limite inferior.
func EstimateCPC(spend float64) float64 {
	switch {
	case spend < 1000:
		return 1.5
	case spend < 5000:
		return 2.0
	case spend < 10000:
		return 2.5
	default:
		return 3.0
	}
}

// TrafficEstimate resume o tráfego esperado para um investimento.
type TrafficEstimate struct {
	Spend  float64 `json:"spend"`
	CPC    float64 `json:"cpc"`
	Clicks float64 `json:"clicks"`
}

// EstimateTraffic aplica EstimateCPC e projeta a quantidade de cliques.
func EstimateTraffic(spend float64) TrafficEstimate {
	cpc := EstimateCPC(spend)
	return TrafficEstimate{
		Spend:  round2(spend),
		CPC:    cpc,
		Clicks: round2(spend / cpc),
	}
}
