package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"filmgraph/src/domain"
)

// pathID lê um identificador positivo do path. Escreve 400 e devolve false quando inválido.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		http.Error(w, name+" is required", http.StatusBadRequest)
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid "+name+" format", http.StatusBadRequest)
		return 0, false
	}

	return id, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to write JSON response", "error", err)
	}
}

// writeError traduz a taxonomia de erros do domínio em status HTTP. Qualquer
// erro fora dela vira 500 com a mensagem opaca.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEntityNotFound):
		s.writeJSON(w, http.StatusNotFound, ErrorDTO{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidOperation):
		s.writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: err.Error()})
	default:
		s.logger.Error("Request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		s.writeJSON(w, http.StatusInternalServerError, ErrorDTO{Error: domain.ErrUnavailableServer.Error()})
	}
}
