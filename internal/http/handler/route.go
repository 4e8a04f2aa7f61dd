package handler

import (
	"net/http"

	"areasense/internal/route"
)

type RouteHandler struct {
	Router   *route.Router
	Platform route.Platform
}

type planDTO struct {
	Destination string         `json:"destination"`
	Platform    route.Platform `json:"platform"`
	Actions     []route.Action `json:"actions"`
}

// Plan only builds the actions; opening them is the client's job.
func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	origin, err := parseLatLng(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	platform := h.Platform
	if s := r.URL.Query().Get("platform"); s != "" {
		if platform, err = route.ParsePlatform(s); err != nil {
			httpError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	dest := r.URL.Query().Get("dest")
	actions, err := h.Router.Plan(dest, origin, platform)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planDTO{Destination: dest, Platform: platform, Actions: actions})
}
