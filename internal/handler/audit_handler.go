package handler

import (
	"net/http"
	"strconv"
	"strings"

	"go-videotube/internal/middleware"
	"go-videotube/internal/service"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(service *service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// Activity lists the caller's own auth events, newest first.
func (h *AuditHandler) Activity(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	items, err := h.service.ListByActor(r.Context(), userID, parseIntOrDefault(r.URL.Query().Get("limit"), 50))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, items, "Account activity fetched successfully")
}

func parseIntOrDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}
