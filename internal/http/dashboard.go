package http

import "net/http"

// Dashboard devolve o resumo da carteira e do consumo do plano.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFrom(w, r)
	if !ok {
		return
	}

	summary, err := h.dashboard.Summary(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err, "não foi possível montar o painel")
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}
