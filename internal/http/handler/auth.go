package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"areasense/internal/auth"
)

type AuthHandler struct {
	Profiles auth.ProfileRepository
	JWT      *auth.JWT
}

type registerReq struct {
	Handle    string   `json:"handle"`
	Password  string   `json:"password"`
	Languages []string `json:"languages"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Handle = strings.TrimSpace(req.Handle)
	if n := utf8.RuneCountInString(req.Handle); n < 3 || n > 32 || len(req.Password) < 8 {
		httpError(w, http.StatusBadRequest, "invalid input")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p := auth.Profile{Handle: req.Handle, PasswordHash: hash, Languages: req.Languages}
	if err := h.Profiles.CreateProfile(r.Context(), &p); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.JWT.Sign(p.ID, p.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"token": token, "profile": p})
}

type loginReq struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Handle = strings.TrimSpace(req.Handle)
	if req.Handle == "" || req.Password == "" {
		httpError(w, http.StatusBadRequest, "invalid input")
		return
	}

	p, err := h.Profiles.GetProfileByHandle(r.Context(), req.Handle)
	if err != nil {
		if errors.Is(err, auth.ErrProfileNotFound) {
			httpError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, r, err)
		return
	}
	if !auth.ComparePassword(p.PasswordHash, req.Password) {
		httpError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	// the role is read at login; a promotion takes effect on the next token
	token, err := h.JWT.Sign(p.ID, p.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}
