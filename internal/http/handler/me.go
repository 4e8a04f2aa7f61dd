package handler

import (
	"net/http"

	"areasense/internal/auth"
)

type MeHandler struct {
	Profiles auth.ProfileRepository
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	pr, _ := auth.PrincipalFromContext(r.Context())
	p, err := h.Profiles.GetProfile(r.Context(), pr.ProfileID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
