package v1alpha1

import (
	"encoding/json"
	"net/http"

	"github.com/KirkDiggler/bestiary/internal/errors"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "code", code, "error", err)
	}

	writeJSON(w, status, errorResponse{
		Code:    code.String(),
		Message: errors.GetMessage(err),
	})
}
