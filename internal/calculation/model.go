package calculation

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("cálculo não encontrado")
	ErrInvalidInput = errors.New("dados do cálculo inválidos")
)

const (
	ModeSimplified = "simplified"
	ModeComplete   = "complete"
)

// Record é uma execução bem-sucedida da calculadora. Registros não são
// alterados depois de gravados.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	ClientID  *uuid.UUID      `json:"client_id,omitempty"`
	Mode      string          `json:"mode"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// Filter pagina o histórico de uma conta.
type Filter struct {
	AccountID uuid.UUID
	ClientID  *uuid.UUID
	Mode      string
	Limit     int
	Offset    int
}
