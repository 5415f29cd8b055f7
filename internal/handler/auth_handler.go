package handler

import (
	"errors"
	"net/http"
	"strings"

	"go-videotube/internal/middleware"
	"go-videotube/internal/model"
	"go-videotube/internal/service"
	"go-videotube/internal/session"
	"go-videotube/internal/storage"
	"go-videotube/pkg/apierror"
)

const multipartMemory = 1 << 20

type AuthHandler struct {
	service       *service.AuthService
	transport     *session.Transport
	staging       *storage.Staging
	maxImageBytes int64
}

func NewAuthHandler(service *service.AuthService, transport *session.Transport, staging *storage.Staging, maxImageBytes int64) *AuthHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = 5 << 20
	}
	return &AuthHandler{
		service:       service,
		transport:     transport,
		staging:       staging,
		maxImageBytes: maxImageBytes,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxImageBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, apierror.ValidationFailed("upload too large", ""))
			return
		}
		writeError(w, apierror.ValidationFailed("expected a multipart form", ""))
		return
	}
	defer r.MultipartForm.RemoveAll()

	payload := model.RegisterRequest{
		FullName: strings.TrimSpace(r.FormValue("fullName")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	if err := validateStruct(payload); err != nil {
		writeError(w, err)
		return
	}

	avatarPath, err := h.stage(r, "avatar")
	if err != nil {
		writeError(w, err)
		return
	}

	coverPath, err := h.stage(r, "coverImage")
	if err != nil {
		_ = h.staging.Remove(avatarPath)
		writeError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), service.RegisterInput{
		RegisterRequest: payload,
		AvatarPath:      avatarPath,
		CoverImagePath:  coverPath,
	}, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user, "User registered successfully")
}

// stage copies an optional multipart file to the staging area and returns
// its path, or "" when the field is absent.
func (h *AuthHandler) stage(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", apierror.ValidationFailed("invalid "+field+" upload", field)
	}
	defer file.Close()

	path, err := h.staging.Save(header.Filename, file, h.maxImageBytes)
	if errors.Is(err, storage.ErrTooLarge) {
		return "", apierror.ValidationFailed(field+" exceeds the size limit", field)
	}
	if err != nil {
		return "", apierror.Unavailable(err)
	}
	return path, nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	sess, err := h.service.Login(r.Context(), payload, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	h.transport.Write(w, sess.Tokens)
	tokens := h.transport.Body(r, sess.Tokens)
	writeSuccess(w, http.StatusOK, model.SessionResponse{
		User:         sess.User,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
	}, "User logged in successfully")
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	presented, err := h.transport.RefreshToken(r)
	if err != nil {
		presented = ""
	}

	pair, err := h.service.Refresh(r.Context(), presented, actorFromRequest(r))
	if err != nil {
		if apiErr, ok := apierror.As(err); ok && apiErr.HTTPStatus == http.StatusUnauthorized {
			h.transport.Clear(w)
		}
		writeError(w, err)
		return
	}

	h.transport.Write(w, pair)
	writeSuccess(w, http.StatusOK, h.transport.Body(r, pair), "Access token refreshed")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("unauthorized request"))
		return
	}

	if err := h.service.Logout(r.Context(), userID, actorFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}

	h.transport.Clear(w)
	writeSuccess(w, http.StatusOK, map[string]any{}, "User logged out")
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("unauthorized request"))
		return
	}

	var payload model.ChangePasswordRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, payload, actorFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}

	h.transport.Clear(w)
	writeSuccess(w, http.StatusOK, map[string]any{}, "Password changed successfully")
}

func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("unauthorized request"))
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, "User fetched successfully")
}
