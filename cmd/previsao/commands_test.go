package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/trafficmanagerhub/hub/internal/previsibilidade"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSimplifiedJSON(t *testing.T) {
	out, _, err := execute(t, "simplificada", "--spend", "1000", "--cpl", "10", "--conversion", "2", "--ticket", "100", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got previsibilidade.SimplifiedResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("saída não é JSON: %v\n%s", err, out)
	}
	want := previsibilidade.SimplifiedResult{Spend: 1000, LeadsGenerated: 100, SalesForecast: 2, ForecastRevenue: 200, ROI: -80}
	if got != want {
		t.Fatalf("expected %+v got %+v", want, got)
	}
}

func TestSimplifiedTable(t *testing.T) {
	out, _, err := execute(t, "simplificada", "--spend", "1000", "--cpl", "10", "--conversion", "2", "--ticket", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Leads gerados", "100.00", "R$ 200.00", "-80.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("tabela sem %q:\n%s", want, out)
		}
	}
}

func TestCompleteTable(t *testing.T) {
	out, _, err := execute(t, "completa", "--spend", "1000", "--cpl", "10", "--conversion", "2", "--ticket", "100", "--margin", "30", "--repeat", "2.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(out, "\n")
	order := []string{"Pessimista", "Realista", "Otimista"}
	last := -1
	for _, label := range order {
		idx := -1
		for i, line := range lines {
			if strings.Contains(line, label) {
				idx = i
				break
			}
		}
		if idx <= last {
			t.Fatalf("cenário %s fora de ordem:\n%s", label, out)
		}
		last = idx
	}
	if !strings.Contains(out, "R$ -940.00") {
		t.Errorf("lucro líquido realista ausente:\n%s", out)
	}
}

func TestValidationGoesToStderr(t *testing.T) {
	out, errOut, err := execute(t, "completa", "--spend", "0", "--cpl", "10", "--conversion", "2", "--ticket", "100", "--margin", "120")

	var verr *validationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error got %v", err)
	}
	if out != "" {
		t.Fatalf("stdout deveria ficar vazio: %q", out)
	}
	for _, msg := range []string{previsibilidade.MsgSpend, previsibilidade.MsgProfitMargin, previsibilidade.MsgRepeatPurchases} {
		if !strings.Contains(errOut, msg) {
			t.Errorf("stderr sem %q: %s", msg, errOut)
		}
	}
	if len(verr.messages) != 3 {
		t.Fatalf("expected 3 mensagens got %v", verr.messages)
	}
}

func TestCPC(t *testing.T) {
	out, _, err := execute(t, "cpc", "--spend", "5000", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got previsibilidade.TrafficEstimate
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("saída não é JSON: %v", err)
	}
	if got.CPC != 2.5 || got.Clicks != 2000 {
		t.Fatalf("unexpected %+v", got)
	}

	_, errOut, err := execute(t, "cpc")
	var verr *validationError
	if !errors.As(err, &verr) || !strings.Contains(errOut, previsibilidade.MsgSpend) {
		t.Fatalf("cpc sem spend deveria falhar: %v %q", err, errOut)
	}

	_, errOut, err = execute(t, "cpc", "--spend", "0")
	if !errors.As(err, &verr) || !strings.Contains(errOut, previsibilidade.MsgSpend) {
		t.Fatalf("cpc com spend zero deveria falhar: %v %q", err, errOut)
	}
}

func TestOutOfRangeGoesToStderr(t *testing.T) {
	_, errOut, err := execute(t, "simplificada", "--spend", "1e12", "--cpl", "1e-300", "--conversion", "50", "--ticket", "10")
	var verr *validationError
	if !errors.As(err, &verr) || !strings.Contains(errOut, previsibilidade.MsgOutOfRange) {
		t.Fatalf("resultado fora de faixa deveria falhar: %v %q", err, errOut)
	}
}
