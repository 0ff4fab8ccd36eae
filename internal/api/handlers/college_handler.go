package handlers

import (
	"net/http"
	"strconv"

	"github.com/sahyog-labs/disha/internal/core"
	"github.com/sahyog-labs/disha/internal/models"
)

const (
	defaultRadiusKm = 20
	defaultPageSize = 20
	maxPageSize     = 100
)

type CollegeHandler struct {
	dbclient core.DbClient
}

func NewCollegeHandler(dbclient core.DbClient) *CollegeHandler {
	return &CollegeHandler{dbclient: dbclient}
}

// List supports text, district/state, stream and geo filters with pagination.
// Geo filtering applies only when both lat and lon are present.
func (h *CollegeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.CollegeFilter{
		Q:        q.Get("q"),
		State:    q.Get("state"),
		District: q.Get("district"),
		Stream:   q.Get("stream"),
		Page:     intParam(q.Get("page"), 1),
		Limit:    intParam(q.Get("limit"), defaultPageSize),
	}
	if filter.District == "" {
		filter.District = q.Get("city")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr != "" && lonStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		if errLat != nil || errLon != nil {
			respondErr(w, http.StatusBadRequest, "Invalid lat/lon")
			return
		}
		filter.HasGeo = true
		filter.Lat = lat
		filter.Lon = lon
		filter.WithinKm = floatParam(q.Get("withinKm"), defaultRadiusKm)
		if filter.WithinKm <= 0 {
			filter.WithinKm = defaultRadiusKm
		}
	}

	colleges, total, err := h.dbclient.ListColleges(r.Context(), filter)
	if err != nil {
		respondServerErr(w, "colleges.list", err)
		return
	}
	if colleges == nil {
		colleges = []models.College{}
	}

	respondOKMeta(w, colleges, map[string]any{
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func floatParam(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
