package diagnosis

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v2"

	"github.com/trafficmanagerhub/hub/internal/previsibilidade"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Prompts guarda as instruções enviadas ao provedor.
type Prompts struct {
	System string
	user   *template.Template
}

type promptFile struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type promptData struct {
	Input   Input
	Budget  float64
	Ticket  float64
	Traffic *previsibilidade.TrafficEstimate
	Site    *SiteContext
}

// LoadPrompts lê os templates embutidos.
func LoadPrompts() (*Prompts, error) {
	return ParsePrompts(promptsYAML)
}

// ParsePrompts interpreta um arquivo YAML com as chaves system e user.
func ParsePrompts(raw []byte) (*Prompts, error) {
	var file promptFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("prompts: %w", err)
	}
	if strings.TrimSpace(file.System) == "" || strings.TrimSpace(file.User) == "" {
		return nil, errors.New("prompts: system e user são obrigatórios")
	}

	tpl, err := template.New("user").Option("missingkey=error").Parse(file.User)
	if err != nil {
		return nil, fmt.Errorf("prompts: %w", err)
	}
	return &Prompts{System: strings.TrimSpace(file.System), user: tpl}, nil
}

// Render monta o prompt do usuário.
func (p *Prompts) Render(in Input, traffic *previsibilidade.TrafficEstimate, site *SiteContext) (string, error) {
	data := promptData{Input: in, Traffic: traffic, Site: site}
	if in.MonthlyBudget != nil {
		data.Budget = *in.MonthlyBudget
	}
	if in.AverageTicket != nil {
		data.Ticket = *in.AverageTicket
	}

	var b strings.Builder
	if err := p.user.Execute(&b, data); err != nil {
		return "", fmt.Errorf("prompts: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}
