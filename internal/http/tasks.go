package http

import (
	"net/http"
	"strings"

	"github.com/trafficmanagerhub/hub/internal/http/envelope"
	"github.com/trafficmanagerhub/hub/internal/task"
)

type taskPayload struct {
	ClientID    *string `json:"client_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Kind        *string `json:"kind"`
	Status      *string `json:"status"`
	DueAt       *string `json:"due_at"`
}

// ListTasks devolve a agenda; due_from/due_to aceitam RFC3339 ou AAAA-MM-DD.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	clientParam := q.Get("client_id")
	clientID, err := parseOptionalUUID(&clientParam)
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "client_id inválido", nil)
		return
	}
	fromParam, toParam := q.Get("due_from"), q.Get("due_to")
	dueFrom, err := parseOptionalDate(&fromParam)
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "due_from inválido", nil)
		return
	}
	dueTo, err := parseOptionalDate(&toParam)
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "due_to inválido", nil)
		return
	}

	limit, offset := pagination(r)
	tasks, err := h.tasks.List(r.Context(), task.Filter{
		AccountID: accountID,
		ClientID:  clientID,
		Status:    splitQuery(q["status"]),
		Kind:      strings.TrimSpace(q.Get("kind")),
		DueFrom:   dueFrom,
		DueTo:     dueTo,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeServiceError(w, r, err, "não foi possível listar tarefas")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// CreateTask agenda tarefa ou reunião.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}

	var payload taskPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	clientID, err := parseOptionalUUID(payload.ClientID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "client_id inválido", nil)
		return
	}
	dueAt, err := parseOptionalDate(payload.DueAt)
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "due_at inválido", nil)
		return
	}

	created, err := h.tasks.Create(r.Context(), task.CreateInput{
		AccountID:   accountID,
		ClientID:    clientID,
		Title:       valueOf(payload.Title),
		Description: valueOf(payload.Description),
		Kind:        valueOf(payload.Kind),
		Status:      valueOf(payload.Status),
		DueAt:       dueAt,
	})
	if err != nil {
		writeServiceError(w, r, err, "não foi possível criar tarefa")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"task": created})
}

// UpdateTask altera campos enviados; client_id ou due_at vazios limpam o valor.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "id inválido", nil)
		return
	}

	var payload taskPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	input := task.UpdateInput{
		ID:          id,
		AccountID:   accountID,
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
	}

	if payload.ClientID != nil {
		clientID, err := parseOptionalUUID(payload.ClientID)
		if err != nil {
			WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "client_id inválido", nil)
			return
		}
		input.ClientID = clientID
		input.ClearClient = clientID == nil
	}
	if payload.DueAt != nil {
		dueAt, err := parseOptionalDate(payload.DueAt)
		if err != nil {
			WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "due_at inválido", nil)
			return
		}
		input.DueAt = dueAt
		input.ClearDue = dueAt == nil
	}

	updated, err := h.tasks.Update(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível atualizar tarefa")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"task": updated})
}

// DeleteTask remove tarefa.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "id inválido", nil)
		return
	}

	if err := h.tasks.Delete(r.Context(), accountID, id); err != nil {
		writeServiceError(w, r, err, "não foi possível remover tarefa")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
