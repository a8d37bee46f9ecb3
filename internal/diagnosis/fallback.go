package diagnosis

import (
	"fmt"
	"strings"
)

const highTicket = 1000

// BuildFallback monta um diagnóstico determinístico a partir da entrada,
// usado quando o provedor de IA está desligado ou falha.
func BuildFallback(in Input) Report {
	niche := strings.TrimSpace(in.Niche)
	where := ""
	if in.City != "" {
		where = " em " + in.City
	}

	audience := in.TargetAudience
	if audience == "" {
		audience = fmt.Sprintf("Pessoas com intenção de compra ativa para %s%s, segmentadas por localização e interesses relacionados ao nicho.", niche, where)
	}

	r := Report{
		Summary: fmt.Sprintf("Para **%s**%s, o caminho mais previsível é capturar a demanda que já existe em busca e, em paralelo, "+
			"gerar demanda com anúncios em redes sociais. Comece com campanhas enxutas, valide o custo por lead nas primeiras "+
			"duas semanas e só então escale o investimento nos conjuntos que converterem melhor.", niche, where),
		Audience: audience,
		PainPoints: []string{
			"Dificuldade de encontrar um fornecedor confiável de " + niche + where,
			"Falta de clareza sobre preço e prazo antes do primeiro contato",
			"Pouca prova social disponível nos canais digitais",
		},
		KPIs: []string{"Custo por lead (CPL)", "Taxa de conversão de lead em venda", "CAC", "ROAS"},
		Risks: []string{
			"Investimento pulverizado em muitos canais antes de validar o CPL",
			"Atendimento lento aos leads, derrubando a conversão",
			"Página de destino sem rastreamento de conversões configurado",
		},
	}

	if in.AverageTicket != nil && *in.AverageTicket >= highTicket {
		r.Channels = []string{"Google Ads (Pesquisa)", "Meta Ads (Instagram e Facebook)", "Remarketing"}
		r.Offers = []string{"Diagnóstico ou consultoria gratuita", "Estudo de caso com resultado de cliente", "Condição especial para fechamento no mês"}
		r.BudgetSplit = []BudgetShare{
			{Channel: "Google Ads (Pesquisa)", Percent: 55},
			{Channel: "Meta Ads (Instagram e Facebook)", Percent: 30},
			{Channel: "Remarketing", Percent: 15},
		}
	} else {
		r.Channels = []string{"Meta Ads (Instagram e Facebook)", "Google Ads (Pesquisa)", "Remarketing"}
		r.Offers = []string{"Cupom de primeira compra", "Combo ou kit com preço fechado", "Atendimento imediato via WhatsApp"}
		r.BudgetSplit = []BudgetShare{
			{Channel: "Meta Ads (Instagram e Facebook)", Percent: 45},
			{Channel: "Google Ads (Pesquisa)", Percent: 40},
			{Channel: "Remarketing", Percent: 15},
		}
	}
	return r
}
