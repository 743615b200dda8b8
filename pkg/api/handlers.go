package api

import (
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"mcch/pkg/mcrouter"
	"mcch/pkg/snap"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router mcrouter.Router
	stats  StatsResponse
}

// NewHandlers creates handlers with the given router.
func NewHandlers(router mcrouter.Router, stats StatsResponse) *Handlers {
	return &Handlers{
		router: router,
		stats:  stats,
	}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	if err := validateCoord(req.Start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if err := validateCoord(req.End); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}
	if err := validatePreference(req.Preference, h.stats.Dim); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_preference", "preference")
		return
	}

	result, err := h.router.Route(r.Context(),
		mcrouter.LatLng{Lat: req.Start.Lat, Lng: req.Start.Lng},
		mcrouter.LatLng{Lat: req.End.Lat, Lng: req.End.Lng},
		req.Preference,
	)
	if err != nil {
		if errors.Is(err, snap.ErrPointTooFar) {
			writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "")
			return
		}
		if errors.Is(err, mcrouter.ErrNoRoute) {
			writeError(w, http.StatusNotFound, "no_route_found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RouteResponse{
		Cost:       result.Cost,
		Preference: result.Preference,
	})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats)
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func validatePreference(pref []float64, dim int) error {
	if len(pref) == 0 {
		return nil
	}
	if len(pref) != dim {
		return errors.New("preference vector has the wrong number of dimensions")
	}
	var sum float64
	for _, p := range pref {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return errors.New("preference weights must be finite and non-negative")
		}
		sum += p
	}
	if sum <= 0 {
		return errors.New("preference weights must sum to a positive value")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
