package http

import (
	"net/http"

	"github.com/trafficmanagerhub/hub/internal/http/envelope"
)

// WriteJSON responde com o envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	envelope.JSON(w, status, data)
}

// WriteError responde com o envelope de erro; details vai em error.details.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	envelope.Error(w, status, code, message, details)
}
