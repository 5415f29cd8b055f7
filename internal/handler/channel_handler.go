package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-videotube/internal/middleware"
	"go-videotube/internal/service"
)

type ChannelHandler struct {
	service *service.ChannelService
}

func NewChannelHandler(service *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{service: service}
}

func (h *ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := middleware.UserIDFromContext(r.Context())

	profile, err := h.service.Profile(r.Context(), chi.URLParam(r, "username"), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, profile, "User channel fetched successfully")
}

func (h *ChannelHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := middleware.UserIDFromContext(r.Context())

	items, err := h.service.WatchHistory(r.Context(), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, items, "Watch history fetched successfully")
}
