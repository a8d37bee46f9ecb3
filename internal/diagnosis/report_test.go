package diagnosis

import (
	"errors"
	"strings"
	"testing"

	"github.com/trafficmanagerhub/hub/internal/previsibilidade"
)

func TestParseReport(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"json puro", `{"summary":"Foque em busca local.","channels":["Google Ads"],"budgetSplit":[{"channel":"Google Ads","percent":100}]}`},
		{"cercado por crases", "```json\n{\"summary\":\"Foque em busca local.\",\"channels\":[\"Google Ads\"],\"budgetSplit\":[{\"channel\":\"Google Ads\",\"percent\":100}]}\n```"},
		{"vírgula sobrando", `{"summary":"Foque em busca local.","channels":["Google Ads",],"budgetSplit":[{"channel":"Google Ads","percent":100},],}`},
		{"aspas simples", `{'summary':'Foque em busca local.','channels':['Google Ads'],'budgetSplit':[{'channel':'Google Ads','percent':100}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := ParseReport(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Summary != "Foque em busca local." || len(r.Channels) != 1 || len(r.BudgetSplit) != 1 {
				t.Fatalf("unexpected report %+v", r)
			}
		})
	}
}

func TestParseReportEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", `{"summary":"  ","channels":["Meta"]}`} {
		if _, err := ParseReport(raw); !errors.Is(err, ErrEmptyReport) {
			t.Errorf("%q: expected ErrEmptyReport got %v", raw, err)
		}
	}
}

func TestNormalizeSplit(t *testing.T) {
	got := normalizeSplit([]BudgetShare{
		{Channel: "Google Ads", Percent: 3},
		{Channel: "Meta Ads", Percent: 1},
		{Channel: " ", Percent: 10},
		{Channel: "TikTok", Percent: -5},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 fatias got %v", got)
	}
	if got[0].Percent != 75 || got[1].Percent != 25 {
		t.Fatalf("reescala inesperada %v", got)
	}

	kept := normalizeSplit([]BudgetShare{{Channel: "A", Percent: 60}, {Channel: "B", Percent: 39.8}})
	if kept[0].Percent != 60 || kept[1].Percent != 39.8 {
		t.Fatalf("soma próxima de 100 não deveria ser alterada: %v", kept)
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(Report{
		Summary:     "Priorize **Google Ads** na região.<script>alert(1)</script>",
		Channels:    []string{"Google Ads"},
		BudgetSplit: []BudgetShare{{Channel: "Google Ads", Percent: 62.5}},
		Traffic:     &previsibilidade.TrafficEstimate{Spend: 1000, CPC: 2, Clicks: 500},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"<h2>Diagnóstico</h2>", "<strong>Google Ads</strong>", "<li>Google Ads: 62.5%</li>", "500 cliques"} {
		if !strings.Contains(html, want) {
			t.Errorf("html sem %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("html bruto não deveria passar")
	}
}
