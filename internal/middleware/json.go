package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go-videotube/internal/model"
	"go-videotube/pkg/apierror"
)

// writeAPIError renders the failure envelope for errors raised before a
// request reaches a handler.
func writeAPIError(w http.ResponseWriter, apiErr *apierror.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Status:  apiErr.HTTPStatus,
		Success: false,
		Message: apiErr.Message,
		Error:   &model.APIError{Code: apiErr.Code, Details: apiErr.Details},
	})
}

// BodyLimit caps JSON request bodies. Multipart uploads are bounded by the
// registration handler instead.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = 16 << 10
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && isJSON(r) {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isJSON(r *http.Request) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	return ct == "" || strings.HasPrefix(ct, "application/json")
}
