package http

import (
	"net/http"

	"filmgraph/src/domain/entities"
)

const (
	votePositive = entities.PolarityPositive
	voteNegative = entities.PolarityNegative
)

func (s *Server) AddLike(w http.ResponseWriter, r *http.Request) {
	filmID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := s.pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := s.engagementService.AddLike(r.Context(), filmID, userID); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) RemoveLike(w http.ResponseWriter, r *http.Request) {
	filmID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := s.pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := s.engagementService.RemoveLike(r.Context(), filmID, userID); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetLikes(w http.ResponseWriter, r *http.Request) {
	filmID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	userIDs, err := s.engagementService.GetLikes(r.Context(), filmID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, LikesDTO{FilmID: filmID, UserIDs: userIDs})
}

// voteHandler atende as quatro rotas de voto; add indica PUT (true) ou DELETE (false).
func (s *Server) voteHandler(polarity entities.Polarity, add bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewID, ok := s.pathID(w, r, "id")
		if !ok {
			return
		}
		userID, ok := s.pathID(w, r, "userId")
		if !ok {
			return
		}

		var (
			review *entities.Review
			err    error
		)
		if add {
			review, err = s.engagementService.AddVote(r.Context(), reviewID, userID, polarity)
		} else {
			review, err = s.engagementService.RemoveVote(r.Context(), reviewID, userID, polarity)
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.writeJSON(w, http.StatusOK, MapReview(review))
	}
}
