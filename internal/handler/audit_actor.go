package handler

import (
	"net/http"

	"go-videotube/internal/middleware"
	"go-videotube/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		actor.UserID = id
	}
	return actor
}
