package http

import (
	"net/http"
	"strconv"

	"filmgraph/src/domain"
)

const defaultPopularCount = 10

func (s *Server) GetPopular(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	count := defaultPopularCount
	if raw := query.Get("count"); raw != "" {
		var err error
		count, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid count format", http.StatusBadRequest)
			return
		}
	}

	var filter domain.PopularityFilter

	if raw := query.Get("genreId"); raw != "" {
		genreID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid genreId format", http.StatusBadRequest)
			return
		}
		filter.GenreID = &genreID
	}

	if raw := query.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid year format", http.StatusBadRequest)
			return
		}
		filter.Year = &year
	}

	films, err := s.rankingService.GetPopular(r.Context(), count, filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, MapFilms(films))
}

func (s *Server) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	films, err := s.recommendationService.GetRecommendations(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, MapFilms(films))
}
