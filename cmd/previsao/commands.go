package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/trafficmanagerhub/hub/internal/previsibilidade"
)

// validationError sinaliza que as mensagens já foram escritas no stderr.
type validationError struct {
	messages []string
}

func (e *validationError) Error() string {
	return strings.Join(e.messages, "; ")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var jsonOutput bool

	root := &cobra.Command{
		Use:           "previsao",
		Short:         "Calculadora de previsibilidade de tráfego pago",
		Long:          "previsao projeta leads, vendas, receita e ROI a partir do investimento em mídia.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "saída em JSON")

	root.AddCommand(
		newSimplifiedCmd(stdout, stderr, &jsonOutput),
		newCompleteCmd(stdout, stderr, &jsonOutput),
		newCPCCmd(stdout, stderr, &jsonOutput),
	)
	return root
}

func funnelFlags(cmd *cobra.Command, complete bool) {
	cmd.Flags().Float64("spend", 0, "investimento mensal (R$)")
	cmd.Flags().Float64("cpl", 0, "custo por lead (R$)")
	cmd.Flags().Float64("conversion", 0, "taxa de conversão de lead em venda (%)")
	cmd.Flags().Float64("ticket", 0, "ticket médio (R$)")
	if complete {
		cmd.Flags().Float64("margin", 0, "margem de lucro (%)")
		cmd.Flags().Float64("repeat", 0, "compras por cliente ao longo da vida")
	}
}

// readInput monta a entrada parcial apenas com as flags informadas.
func readInput(cmd *cobra.Command) previsibilidade.PartialInput {
	get := func(name string) *float64 {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			return nil
		}
		v, err := cmd.Flags().GetFloat64(name)
		if err != nil {
			return nil
		}
		return &v
	}
	return previsibilidade.PartialInput{
		Spend:           get("spend"),
		CostPerLead:     get("cpl"),
		ConversionRate:  get("conversion"),
		AverageTicket:   get("ticket"),
		ProfitMargin:    get("margin"),
		RepeatPurchases: get("repeat"),
	}
}

func newSimplifiedCmd(stdout, stderr io.Writer, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "simplificada",
		Aliases: []string{"simplified"},
		Short:   "Estimativa pontual de leads, vendas, receita e ROI",
		Example: "  previsao simplificada --spend 1000 --cpl 10 --conversion 2 --ticket 100",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := readInput(cmd)
			if msgs := previsibilidade.ValidateSimplifiedInput(in); len(msgs) > 0 {
				return reportValidation(stderr, msgs)
			}
			res := previsibilidade.CalculateSimplified(in.Simplified())
			if !res.Finite() {
				return reportValidation(stderr, []string{previsibilidade.MsgOutOfRange})
			}
			if *jsonOutput {
				return writeJSON(stdout, res)
			}
			return writeSimplified(stdout, res)
		},
	}
	funnelFlags(cmd, false)
	return cmd
}

func newCompleteCmd(stdout, stderr io.Writer, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "completa",
		Aliases: []string{"complete"},
		Short:   "Cenários pessimista, realista e otimista com CAC, LTV e lucro",
		Example: "  previsao completa --spend 1000 --cpl 10 --conversion 2 --ticket 100 --margin 30 --repeat 2.5",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := readInput(cmd)
			if msgs := previsibilidade.ValidateCompleteInput(in); len(msgs) > 0 {
				return reportValidation(stderr, msgs)
			}
			res := previsibilidade.CalculateComplete(in.Complete())
			for _, scenario := range res {
				if !scenario.Finite() {
					return reportValidation(stderr, []string{previsibilidade.MsgOutOfRange})
				}
			}
			if *jsonOutput {
				return writeJSON(stdout, res)
			}
			return writeComplete(stdout, res)
		},
	}
	funnelFlags(cmd, true)
	return cmd
}

func newCPCCmd(stdout, stderr io.Writer, jsonOutput *bool) *cobra.Command {
	var spend float64
	cmd := &cobra.Command{
		Use:     "cpc",
		Short:   "CPC e cliques estimados para o investimento",
		Example: "  previsao cpc --spend 5000",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("spend") {
				return reportValidation(stderr, []string{previsibilidade.MsgSpend})
			}
			if msgs := previsibilidade.ValidateSpend(spend); len(msgs) > 0 {
				return reportValidation(stderr, msgs)
			}
			est := previsibilidade.EstimateTraffic(spend)
			if *jsonOutput {
				return writeJSON(stdout, est)
			}
			return render(stdout, []string{"Investimento", "CPC", "Cliques"}, [][]string{
				{money(est.Spend), money(est.CPC), number(est.Clicks)},
			})
		},
	}
	cmd.Flags().Float64Var(&spend, "spend", 0, "investimento mensal (R$)")
	return cmd
}

func reportValidation(w io.Writer, msgs []string) error {
	for _, msg := range msgs {
		fmt.Fprintln(w, msg)
	}
	return &validationError{messages: msgs}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSimplified(w io.Writer, res previsibilidade.SimplifiedResult) error {
	return render(w, []string{"Métrica", "Valor"}, [][]string{
		{"Investimento", money(res.Spend)},
		{"Leads gerados", number(res.LeadsGenerated)},
		{"Vendas previstas", number(res.SalesForecast)},
		{"Receita prevista", money(res.ForecastRevenue)},
		{"ROI", percent(res.ROI)},
	})
}

var scenarioLabels = map[previsibilidade.Scenario]string{
	previsibilidade.ScenarioPessimistic: "Pessimista",
	previsibilidade.ScenarioRealistic:   "Realista",
	previsibilidade.ScenarioOptimistic:  "Otimista",
}

func writeComplete(w io.Writer, res [3]previsibilidade.ScenarioResult) error {
	rows := make([][]string, 0, len(res))
	for _, s := range res {
		rows = append(rows, []string{
			scenarioLabels[s.Scenario],
			number(s.Leads),
			number(s.Sales),
			money(s.Revenue),
			money(s.CAC),
			money(s.LTV),
			money(s.NetProfit),
			percent(s.ROI),
		})
	}
	return render(w, []string{"Cenário", "Leads", "Vendas", "Receita", "CAC", "LTV", "Lucro líquido", "ROI"}, rows)
}

func render(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func money(v float64) string {
	return "R$ " + decimal.NewFromFloat(v).StringFixed(2)
}

func number(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}
