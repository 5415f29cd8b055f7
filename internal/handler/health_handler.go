package handler

import (
	"context"
	"net/http"
	"time"

	"go-videotube/pkg/apierror"
)

type pinger interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db pinger
}

func NewHealthHandler(db pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		writeError(w, apierror.Unavailable(err))
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"database": "ok"}, "OK")
}
