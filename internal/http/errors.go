package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/trafficmanagerhub/hub/internal/calculation"
	"github.com/trafficmanagerhub/hub/internal/client"
	"github.com/trafficmanagerhub/hub/internal/diagnosis"
	"github.com/trafficmanagerhub/hub/internal/http/envelope"
	httpmiddleware "github.com/trafficmanagerhub/hub/internal/http/middleware"
	"github.com/trafficmanagerhub/hub/internal/plan"
	"github.com/trafficmanagerhub/hub/internal/repo"
	"github.com/trafficmanagerhub/hub/internal/service"
	"github.com/trafficmanagerhub/hub/internal/task"
)

const maxBodyBytes = 1 << 20

// writeServiceError traduz erros de domínio para o envelope HTTP.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "dados inválidos", validation.Messages)
	case errors.Is(err, plan.ErrLimitReached):
		WriteError(w, http.StatusPaymentRequired, envelope.CodePlanLimit, err.Error(), nil)
	case errors.Is(err, client.ErrNotFound),
		errors.Is(err, task.ErrNotFound),
		errors.Is(err, calculation.ErrNotFound),
		errors.Is(err, diagnosis.ErrNotFound),
		errors.Is(err, repo.ErrNotFound):
		WriteError(w, http.StatusNotFound, envelope.CodeNotFound, err.Error(), nil)
	case errors.Is(err, client.ErrInvalidInput),
		errors.Is(err, client.ErrInvalidStatus),
		errors.Is(err, task.ErrInvalidInput),
		errors.Is(err, task.ErrInvalidStatus),
		errors.Is(err, task.ErrInvalidKind),
		errors.Is(err, calculation.ErrInvalidInput),
		errors.Is(err, diagnosis.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, err.Error(), nil)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
		WriteError(w, http.StatusInternalServerError, envelope.CodeInternal, fallback, nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "JSON inválido", nil)
		return false
	}
	return true
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	if value == "" {
		return uuid.Nil, errors.New("empty")
	}
	return uuid.Parse(value)
}

func parseOptionalUUID(value *string) (*uuid.UUID, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*value))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseISODate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty")
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("invalid date")
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	ts, err := parseISODate(*value)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// pagination lê limit/offset; o clamp final fica nos repositórios.
func pagination(r *http.Request) (int, int) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func splitQuery(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func accountFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	accountID := httpmiddleware.AccountID(r.Context())
	if accountID == uuid.Nil {
		WriteError(w, http.StatusUnauthorized, envelope.CodeAuth, "subject inválido", nil)
		return uuid.Nil, false
	}
	return accountID, true
}
