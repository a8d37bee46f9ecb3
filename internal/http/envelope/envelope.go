// Package envelope define o formato {data, error} usado por todas as
// respostas da API, inclusive as geradas pelos middlewares.
package envelope

import (
	"encoding/json"
	"net/http"
)

// Códigos de erro expostos aos clientes.
const (
	CodeValidation = "VALIDATION"
	CodeAuth       = "AUTH"
	CodeForbidden  = "FORBIDDEN"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodePlanLimit  = "PLAN_LIMIT"
	CodeRateLimit  = "RATE_LIMIT"
	CodeInternal   = "INTERNAL"
)

// Success embrulha respostas com dados.
type Success struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

// Failure embrulha respostas de erro.
type Failure struct {
	Data  any   `json:"data"`
	Error *Body `json:"error"`
}

// Body descreve a falha. Details carrega mensagens de validação ou contexto
// extra (request_id, retry_after_seconds).
type Body struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON escreve um envelope de sucesso.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Success{Data: data})
}

// Error escreve um envelope de erro.
func Error(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Failure{Error: &Body{Code: code, Message: message, Details: details}})
}
