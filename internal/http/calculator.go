package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/trafficmanagerhub/hub/internal/calculation"
	"github.com/trafficmanagerhub/hub/internal/http/envelope"
	"github.com/trafficmanagerhub/hub/internal/previsibilidade"
)

type calculatorPayload struct {
	ClientID *string `json:"client_id"`
	previsibilidade.PartialInput
}

// CalculateSimplified projeta leads, vendas, receita e ROI.
func (h *Handler) CalculateSimplified(w http.ResponseWriter, r *http.Request) {
	h.calculate(w, r, h.calculations.Simplified)
}

// CalculateComplete projeta os cenários pessimista, realista e otimista.
func (h *Handler) CalculateComplete(w http.ResponseWriter, r *http.Request) {
	h.calculate(w, r, h.calculations.Complete)
}

type calculateFunc func(ctx context.Context, accountID uuid.UUID, clientID *uuid.UUID, in previsibilidade.PartialInput) (*calculation.Record, error)

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request, run calculateFunc) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}

	var payload calculatorPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	clientID, err := parseOptionalUUID(payload.ClientID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "client_id inválido", nil)
		return
	}

	record, err := run(r.Context(), accountID, clientID, payload.PartialInput)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível calcular")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"calculation": record})
}

// EstimateCPC devolve CPC e cliques estimados para ?spend=.
func (h *Handler) EstimateCPC(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("spend"))
	spend, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "dados inválidos", []string{previsibilidade.MsgSpend})
		return
	}

	estimate, err := h.calculations.EstimateTraffic(spend)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível estimar tráfego")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"traffic": estimate})
}

// ListCalculations devolve o histórico da calculadora.
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}

	clientParam := r.URL.Query().Get("client_id")
	clientID, err := parseOptionalUUID(&clientParam)
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "client_id inválido", nil)
		return
	}

	limit, offset := pagination(r)
	records, err := h.calculations.List(r.Context(), calculation.Filter{
		AccountID: accountID,
		ClientID:  clientID,
		Mode:      r.URL.Query().Get("mode"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeServiceError(w, r, err, "não foi possível listar cálculos")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"calculations": records})
}

// GetCalculation devolve um cálculo do histórico.
func (h *Handler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "id inválido", nil)
		return
	}

	record, err := h.calculations.Get(r.Context(), accountID, id)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível carregar cálculo")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"calculation": record})
}
