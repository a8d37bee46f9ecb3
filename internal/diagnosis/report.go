package diagnosis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"github.com/yuin/goldmark"
)

// ParseReport interpreta a resposta do provedor. Tenta JSON puro, depois
// reparo de JSON e por fim Hjson, que tolera o formato mais solto.
func ParseReport(raw string) (Report, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return Report{}, ErrEmptyReport
	}

	var report Report
	err := json.Unmarshal([]byte(cleaned), &report)
	if err != nil {
		repaired, repairErr := jsonrepair.RepairJSON(cleaned)
		if repairErr == nil {
			err = json.Unmarshal([]byte(repaired), &report)
		}
	}
	if err != nil {
		var loose map[string]any
		if hErr := hjson.Unmarshal([]byte(cleaned), &loose); hErr != nil {
			return Report{}, fmt.Errorf("resposta da IA ilegível: %w", err)
		}
		normalized, mErr := json.Marshal(loose)
		if mErr != nil {
			return Report{}, mErr
		}
		report = Report{}
		if err := json.Unmarshal(normalized, &report); err != nil {
			return Report{}, fmt.Errorf("resposta da IA fora do formato: %w", err)
		}
	}

	report.Summary = strings.TrimSpace(report.Summary)
	if report.Summary == "" {
		return Report{}, ErrEmptyReport
	}
	report.Audience = strings.TrimSpace(report.Audience)
	report.PainPoints = compact(report.PainPoints)
	report.Channels = compact(report.Channels)
	report.Offers = compact(report.Offers)
	report.KPIs = compact(report.KPIs)
	report.Risks = compact(report.Risks)
	report.BudgetSplit = normalizeSplit(report.BudgetSplit)
	return report, nil
}

// RenderHTML converte o relatório em HTML. HTML bruto vindo da IA é omitido
// pelo renderizador padrão.
func RenderHTML(r Report) (string, error) {
	var md strings.Builder
	md.WriteString("## Diagnóstico\n\n")
	md.WriteString(r.Summary)
	md.WriteString("\n\n")

	if r.Audience != "" {
		md.WriteString("## Público-alvo\n\n")
		md.WriteString(r.Audience)
		md.WriteString("\n\n")
	}
	writeList(&md, "Dores do cliente", r.PainPoints)
	writeList(&md, "Canais recomendados", r.Channels)
	writeList(&md, "Ofertas", r.Offers)

	if len(r.BudgetSplit) > 0 {
		md.WriteString("## Divisão do investimento\n\n")
		for _, share := range r.BudgetSplit {
			fmt.Fprintf(&md, "- %s: %s%%\n", share.Channel, formatPercent(share.Percent))
		}
		md.WriteString("\n")
	}
	if r.Traffic != nil {
		md.WriteString("## Estimativa de tráfego\n\n")
		fmt.Fprintf(&md, "Com R$ %.2f por mês e CPC médio de R$ %.2f, a expectativa é de cerca de %.0f cliques.\n\n", r.Traffic.Spend, r.Traffic.CPC, r.Traffic.Clicks)
	}
	writeList(&md, "Indicadores", r.KPIs)
	writeList(&md, "Riscos", r.Risks)

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md.String()), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeList(md *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	md.WriteString("## " + title + "\n\n")
	for _, item := range items {
		md.WriteString("- " + item + "\n")
	}
	md.WriteString("\n")
}

func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// normalizeSplit descarta fatias vazias e reescala para somar 100.
func normalizeSplit(split []BudgetShare) []BudgetShare {
	out := make([]BudgetShare, 0, len(split))
	total := 0.0
	for _, share := range split {
		share.Channel = strings.TrimSpace(share.Channel)
		if share.Channel == "" || share.Percent <= 0 || math.IsNaN(share.Percent) || math.IsInf(share.Percent, 0) {
			continue
		}
		out = append(out, share)
		total += share.Percent
	}
	if total == 0 || math.Abs(total-100) < 0.5 {
		return out
	}
	for i := range out {
		out[i].Percent = math.Round(out[i].Percent*1000/total) / 10
	}
	return out
}

func formatPercent(p float64) string {
	if p == math.Trunc(p) {
		return fmt.Sprintf("%.0f", p)
	}
	return fmt.Sprintf("%.1f", p)
}
