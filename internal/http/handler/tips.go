package handler

import (
	"net/http"

	"areasense/internal/auth"
	"areasense/internal/tip"
)

type TipHandler struct {
	Svc *tip.Service
}

type submitTipReq struct {
	AreaID   string `json:"area_id"`
	Category string `json:"category"`
	Text     string `json:"text"`
	MediaURL string `json:"media_url"`
}

func (h *TipHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	var req submitTipReq
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.Svc.Submit(r.Context(), tip.SubmitInput{
		AreaID:   req.AreaID,
		Category: req.Category,
		Text:     req.Text,
		MediaURL: req.MediaURL,
		AuthorID: p.ProfileID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

type voteReq struct {
	Direction string `json:"direction"`
}

func (h *TipHandler) Vote(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	id, ok := tipIDParam(w, r)
	if !ok {
		return
	}
	var req voteReq
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Svc.Vote(r.Context(), id, p.ProfileID, tip.Direction(req.Direction))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type reportReq struct {
	Reason string `json:"reason"`
}

func (h *TipHandler) Report(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	id, ok := tipIDParam(w, r)
	if !ok {
		return
	}
	var req reportReq
	if !decodeJSON(w, r, &req) {
		return
	}
	reporter := p.ProfileID
	rep, err := h.Svc.Report(r.Context(), id, &reporter, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}
