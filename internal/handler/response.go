package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"go-videotube/internal/model"
	"go-videotube/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Status:  status,
		Success: true,
		Data:    data,
		Message: message,
	})
}

// writeError is the single place where errors become responses. Anything
// that is not an *apierror.APIError is reported as UNAVAILABLE; internal
// reasons are logged, never sent.
func writeError(w http.ResponseWriter, err error) {
	apiErr, ok := apierror.As(err)
	if !ok {
		apiErr = apierror.Unavailable(err)
	}

	switch {
	case apiErr.HTTPStatus >= http.StatusInternalServerError:
		slog.Error("request failed", "code", apiErr.Code, "reason", apiErr.Reason)
	case apiErr.Reason != "":
		slog.Info("request rejected", "code", apiErr.Code, "reason", apiErr.Reason)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Status:  apiErr.HTTPStatus,
		Success: false,
		Message: apiErr.Message,
		Error: &model.APIError{
			Code:    apiErr.Code,
			Details: apiErr.Details,
		},
	})
}
