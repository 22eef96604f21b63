package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yhk1105/114-1-DBFinal/pkg/auth"
	"github.com/yhk1105/114-1-DBFinal/pkg/database"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type ErrorResp struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

type OKResp struct {
	OK bool `json:"ok"`
}

var errorStatuses = []struct {
	target error
	code   string
	status int
}{
	{model.ErrUnauthenticated, "unauthenticated", http.StatusUnauthorized},
	{model.ErrForbidden, "forbidden", http.StatusForbidden},
	{model.ErrValidation, "validation", http.StatusBadRequest},
	{database.ErrNotFound, "not_found", http.StatusNotFound},
	{model.ErrUnavailable, "unavailable", http.StatusConflict},
	{model.ErrBanned, "banned", http.StatusForbidden},
	{model.ErrQuotaNotActive, "quota_not_active", http.StatusPreconditionFailed},
	{model.ErrCancelWindow, "cancel_window", http.StatusPreconditionFailed},
	{model.ErrLimitExceeded, "limit_exceeded", http.StatusTooManyRequests},
	{model.ErrSystemBusy, "system_busy", http.StatusServiceUnavailable},
}

// writeError maps err to a status and an error envelope.
// Unknown errors are logged and reported without details.
func writeError(w http.ResponseWriter, err error) {
	for _, s := range errorStatuses {
		if errors.Is(err, s.target) {
			msg := err.Error()
			if s.status == http.StatusServiceUnavailable {
				msg = model.ErrSystemBusy.Error()
			}

			writeJSON(w, s.status, ErrorResp{ErrorCode: s.code, Message: msg})
			return
		}
	}

	slog.Error("request failed", slog.Any("error", err))
	writeJSON(w, http.StatusInternalServerError, ErrorResp{ErrorCode: "internal", Message: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("can't encode response", slog.Any("error", err))
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return model.Validation("can't decode request body: %v", err)
	}
	return nil
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}

	http.Error(w, fmt.Sprintf("only %s method allowed", method), http.StatusMethodNotAllowed)
	return false
}

// identity returns the caller. staff restricts the endpoint to staff members.
func identity(r *http.Request, staff bool) (model.Identity, error) {
	id, err := auth.FromContext(r.Context())
	if err != nil {
		return model.Identity{}, err
	}

	if staff && id.Role != model.RoleStaff {
		return model.Identity{}, model.ErrForbidden
	}

	return id, nil
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.Validation("can't parse %s: %q", name, raw)
	}
	return id, nil
}
