package http

import (
	"net/http"
	"strings"

	"github.com/trafficmanagerhub/hub/internal/client"
	"github.com/trafficmanagerhub/hub/internal/http/envelope"
	"github.com/trafficmanagerhub/hub/internal/util"
)

type clientPayload struct {
	Name          *string  `json:"name"`
	Email         *string  `json:"email"`
	Phone         *string  `json:"phone"`
	Company       *string  `json:"company"`
	Niche         *string  `json:"niche"`
	Status        *string  `json:"status"`
	MonthlyBudget *float64 `json:"monthly_budget"`
	ClearBudget   bool     `json:"clear_budget"`
	Notes         *string  `json:"notes"`
}

// ListClients devolve a carteira da conta.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	clients, err := h.clients.List(r.Context(), client.Filter{
		AccountID: accountID,
		Status:    splitQuery(r.URL.Query()["status"]),
		Search:    strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeServiceError(w, r, err, "não foi possível listar clientes")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

// CreateClient cadastra cliente respeitando o limite do plano.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}

	var payload clientPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	input := client.CreateInput{
		AccountID:     accountID,
		Name:          valueOf(payload.Name),
		Email:         valueOf(payload.Email),
		Phone:         valueOf(payload.Phone),
		Company:       valueOf(payload.Company),
		Niche:         valueOf(payload.Niche),
		Status:        valueOf(payload.Status),
		MonthlyBudget: payload.MonthlyBudget,
		Notes:         valueOf(payload.Notes),
	}

	created, err := h.clients.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível criar cliente")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"client": created})
}

// GetClient devolve um cliente da conta.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "id inválido", nil)
		return
	}

	found, err := h.clients.Get(r.Context(), accountID, id)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível carregar cliente")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"client": found})
}

// UpdateClient altera apenas os campos enviados.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "id inválido", nil)
		return
	}

	var payload clientPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	updated, err := h.clients.Update(r.Context(), client.UpdateInput{
		ID:            id,
		AccountID:     accountID,
		Name:          util.OptionalString(payload.Name),
		Email:         payload.Email,
		Phone:         payload.Phone,
		Company:       payload.Company,
		Niche:         payload.Niche,
		Status:        util.OptionalString(payload.Status),
		MonthlyBudget: payload.MonthlyBudget,
		ClearBudget:   payload.ClearBudget,
		Notes:         payload.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err, "não foi possível atualizar cliente")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"client": updated})
}

// DeleteClient remove cliente da carteira.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "id inválido", nil)
		return
	}

	if err := h.clients.Delete(r.Context(), accountID, id); err != nil {
		writeServiceError(w, r, err, "não foi possível remover cliente")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
