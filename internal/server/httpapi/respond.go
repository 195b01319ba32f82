package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/logging"
)

func newRequestID() string { return "req_" + uuid.NewString() }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	id := logging.RequestID(r.Context())
	if id == "" {
		id = newRequestID()
	}
	writeJSON(w, status, map[string]any{
		"request_id": id,
		"error":      map[string]any{"code": code, "message": message},
	})
}

// writeWorkflowError maps a workflow error onto an HTTP status and a
// user-facing message.
func writeWorkflowError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeError(w, r, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, common.ErrPaymentNotApproved):
		writeError(w, r, http.StatusForbidden, "PAYMENT_NOT_APPROVED", common.ErrPaymentNotApproved.Error())
	case errors.Is(err, common.ErrAuthorization):
		writeError(w, r, http.StatusForbidden, "FORBIDDEN", common.ErrAuthorization.Error())
	case errors.Is(err, common.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", common.ErrNotFound.Error())
	case errors.Is(err, common.ErrPreviewSuperseded):
		writeError(w, r, http.StatusGone, "PREVIEW_SUPERSEDED", common.ErrPreviewSuperseded.Error())
	case errors.Is(err, common.ErrPreviewUnavailable):
		writeError(w, r, http.StatusUnprocessableEntity, "PREVIEW_UNAVAILABLE", common.ErrPreviewUnavailable.Error())
	case errors.Is(err, common.ErrStorage), errors.Is(err, common.ErrPersistence):
		writeError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "try again")
	default:
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
