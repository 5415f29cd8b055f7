package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go-videotube/internal/model"
	"go-videotube/pkg/apierror"
)

// Timeout bounds handler time. A timed-out request gets the standard
// failure envelope with REQUEST_TIMEOUT.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	apiErr := apierror.RequestTimeout()
	body, _ := json.Marshal(model.APIResponse{
		Status:  apiErr.HTTPStatus,
		Success: false,
		Message: apiErr.Message,
		Error:   &model.APIError{Code: apiErr.Code},
	})

	return func(next http.Handler) http.Handler {
		limited := http.TimeoutHandler(next, timeout, string(body))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// TimeoutHandler writes its message onto the outer header map;
			// completed handlers overwrite this with their own headers.
			w.Header().Set("Content-Type", "application/json")
			limited.ServeHTTP(w, r)
		})
	}
}
