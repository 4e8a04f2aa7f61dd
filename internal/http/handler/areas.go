package handler

import (
	"net/http"

	"areasense/internal/area"
	"areasense/internal/tip"

	"github.com/go-chi/chi/v5"
)

type AreaHandler struct {
	Svc    *area.Service
	TipSvc *tip.Service
}

type resolveDTO struct {
	AreaID     string  `json:"area_id"`
	Name       string  `json:"name"`
	City       string  `json:"city"`
	Ward       *string `json:"ward,omitempty"`
	DistanceKm float64 `json:"distance_km"`
	Via        string  `json:"via"`
}

func (h *AreaHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	p, err := parseLatLng(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.Svc.Resolve(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveDTO{
		AreaID:     m.Area.ID,
		Name:       m.Area.Name,
		City:       m.Area.City,
		Ward:       m.Area.Ward,
		DistanceKm: m.DistanceKm,
		Via:        string(m.Via),
	})
}

func (h *AreaHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.Svc.Area(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AreaHandler) Briefings(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Svc.Briefings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cards == nil {
		cards = []area.BriefingCard{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *AreaHandler) Events(w http.ResponseWriter, r *http.Request) {
	evs, err := h.Svc.Events(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if evs == nil {
		evs = []area.Event{}
	}
	writeJSON(w, http.StatusOK, evs)
}

func (h *AreaHandler) Tips(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.TipSvc.ListTips(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ranked == nil {
		ranked = []tip.Ranked{}
	}
	writeJSON(w, http.StatusOK, ranked)
}
