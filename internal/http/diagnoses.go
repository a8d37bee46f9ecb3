package http

import (
	"net/http"

	"github.com/trafficmanagerhub/hub/internal/diagnosis"
	"github.com/trafficmanagerhub/hub/internal/http/envelope"
)

// CreateDiagnosis gera o diagnóstico de nicho; sem IA disponível devolve o
// diagnóstico de contingência.
func (h *Handler) CreateDiagnosis(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}

	var input diagnosis.Input
	if !decodeJSON(w, r, &input) {
		return
	}

	result, err := h.diagnoses.Generate(r.Context(), accountID, input)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível gerar diagnóstico")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"diagnosis": result})
}

// ListDiagnoses devolve os diagnósticos da conta.
func (h *Handler) ListDiagnoses(w http.ResponseWriter, r *http.Request) {
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
	items, err := h.diagnoses.List(r.Context(), diagnosis.Filter{
		AccountID: accountID,
		ClientID:  clientID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeServiceError(w, r, err, "não foi possível listar diagnósticos")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"diagnoses": items})
}

// GetDiagnosis devolve um diagnóstico.
func (h *Handler) GetDiagnosis(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "id inválido", nil)
		return
	}

	item, err := h.diagnoses.Get(r.Context(), accountID, id)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível carregar diagnóstico")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"diagnosis": item})
}
