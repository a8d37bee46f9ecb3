package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/trafficmanagerhub/hub/internal/http/envelope"
)

// Recover converte panic em 500 INTERNAL com o request id nos detalhes.
// http.ErrAbortHandler é repassado para o servidor encerrar a conexão.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			reqID := middleware.GetReqID(r.Context())
			event := log.Error().Interface("panic", rec).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Bytes("stack", debug.Stack())
			if route := routePattern(r); route != "" {
				event = event.Str("route", route)
			}
			if reqID != "" {
				event = event.Str("request_id", reqID)
			}
			event.Msg("panic recuperado")

			var details any
			if reqID != "" {
				details = map[string]string{"request_id": reqID}
			}
			envelope.Error(w, http.StatusInternalServerError, envelope.CodeInternal, "erro interno", details)
		}()
		next.ServeHTTP(w, r)
	})
}
