package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"areasense/internal/area"
	"areasense/internal/auth"
	"areasense/internal/route"
	"areasense/internal/tip"

	"github.com/go-chi/chi/v5"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps domain errors onto status codes. Anything unrecognised
// is logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *tip.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, area.ErrInvalidCoordinate),
		errors.Is(err, route.ErrInvalidDestination),
		errors.Is(err, route.ErrUnknownProvider):
		httpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, area.ErrNotFound):
		httpError(w, http.StatusNotFound, area.ErrNotFound.Error())
	case errors.Is(err, tip.ErrNotFound):
		httpError(w, http.StatusNotFound, tip.ErrNotFound.Error())
	case errors.Is(err, auth.ErrProfileNotFound):
		httpError(w, http.StatusNotFound, auth.ErrProfileNotFound.Error())
	case errors.Is(err, tip.ErrNotVotable),
		errors.Is(err, tip.ErrInvalidTransition),
		errors.Is(err, auth.ErrHandleTaken):
		httpError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("ERROR: [HTTP] %s %s: %v", r.Method, r.URL.Path, err)
		httpError(w, http.StatusInternalServerError, "server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "bad json")
		return false
	}
	return true
}

func tipIDParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func parseLatLng(r *http.Request) (area.LatLng, error) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return area.LatLng{}, area.ErrInvalidCoordinate
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		return area.LatLng{}, area.ErrInvalidCoordinate
	}
	return area.LatLng{Lat: lat, Lng: lng}, nil
}
