package handler

import (
	"net/http"
	"strconv"

	"areasense/internal/auth"
	"areasense/internal/tip"
)

type ModerationHandler struct {
	Queue *tip.Queue
	Svc   *tip.Service
}

func (h *ModerationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			httpError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	pending, err := h.Queue.Pending(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if pending == nil {
		pending = []tip.PendingTip{}
	}
	writeJSON(w, http.StatusOK, pending)
}

type decideReq struct {
	Outcome string `json:"outcome"`
}

func (h *ModerationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	id, ok := tipIDParam(w, r)
	if !ok {
		return
	}
	var req decideReq
	if !decodeJSON(w, r, &req) {
		return
	}
	dec, err := h.Svc.Decide(r.Context(), id, p.ProfileID, tip.Status(req.Outcome))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dec)
}
