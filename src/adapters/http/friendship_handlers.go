package http

import "net/http"

func (s *Server) AddFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	friendID, ok := s.pathID(w, r, "friendId")
	if !ok {
		return
	}

	if err := s.friendshipService.AddFriend(r.Context(), userID, friendID); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	friendID, ok := s.pathID(w, r, "friendId")
	if !ok {
		return
	}

	if err := s.friendshipService.RemoveFriend(r.Context(), userID, friendID); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	friends, err := s.friendshipService.GetFriends(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, MapUsers(friends))
}

func (s *Server) GetCommonFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	otherID, ok := s.pathID(w, r, "otherId")
	if !ok {
		return
	}

	common, err := s.friendshipService.GetCommonFriends(r.Context(), userID, otherID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, MapUsers(common))
}
