package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"filmgraph/src/services/engagement"
	"filmgraph/src/services/friendship"
	"filmgraph/src/services/ranking"
	"filmgraph/src/services/recommendation"
)

// Server representa o servidor HTTP da API
type Server struct {
	logger                *slog.Logger
	server                *http.Server
	mux                   *http.ServeMux
	port                  int
	friendshipService     *friendship.FriendshipService
	engagementService     *engagement.EngagementService
	rankingService        *ranking.RankingService
	recommendationService *recommendation.RecommendationService
	healthChecks          map[string]func(ctx context.Context) error
}

// NewServer cria uma nova instância do servidor
func NewServer(
	logger *slog.Logger,
	port int,
	friendshipService *friendship.FriendshipService,
	engagementService *engagement.EngagementService,
	rankingService *ranking.RankingService,
	recommendationService *recommendation.RecommendationService,
	metricsHandler http.Handler,
	healthChecks map[string]func(ctx context.Context) error,
) *Server {
	server := &Server{
		mux:                   http.NewServeMux(),
		port:                  port,
		logger:                logger,
		friendshipService:     friendshipService,
		engagementService:     engagementService,
		rankingService:        rankingService,
		recommendationService: recommendationService,
		healthChecks:          healthChecks,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Amizades
	server.mux.HandleFunc("PUT /v1/users/{id}/friends/{friendId}", server.AddFriend)
	server.mux.HandleFunc("DELETE /v1/users/{id}/friends/{friendId}", server.RemoveFriend)
	server.mux.HandleFunc("GET /v1/users/{id}/friends", server.GetFriends)
	server.mux.HandleFunc("GET /v1/users/{id}/friends/common/{otherId}", server.GetCommonFriends)

	// Likes de filmes
	server.mux.HandleFunc("PUT /v1/films/{id}/like/{userId}", server.AddLike)
	server.mux.HandleFunc("DELETE /v1/films/{id}/like/{userId}", server.RemoveLike)
	server.mux.HandleFunc("GET /v1/films/{id}/likes", server.GetLikes)

	// Votos em reviews
	server.mux.HandleFunc("PUT /v1/reviews/{id}/like/{userId}", server.voteHandler(votePositive, true))
	server.mux.HandleFunc("DELETE /v1/reviews/{id}/like/{userId}", server.voteHandler(votePositive, false))
	server.mux.HandleFunc("PUT /v1/reviews/{id}/dislike/{userId}", server.voteHandler(voteNegative, true))
	server.mux.HandleFunc("DELETE /v1/reviews/{id}/dislike/{userId}", server.voteHandler(voteNegative, false))

	// Ranking e recomendação
	server.mux.HandleFunc("GET /v1/films/popular", server.GetPopular)
	server.mux.HandleFunc("GET /v1/users/{id}/recommendations", server.GetRecommendations)

	server.mux.HandleFunc("GET /healthz", server.Health)
	if metricsHandler != nil {
		server.mux.Handle("GET /metrics", metricsHandler)
	}

	return server
}

// Handler expõe o roteador (usado pelos testes com httptest).
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port)

	return s.server.ListenAndServe()
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	status := make(map[string]string, len(s.healthChecks))
	healthy := true

	for name, check := range s.healthChecks {
		if err := check(r.Context()); err != nil {
			s.logger.Warn("Health check failed", "dependency", name, "error", err)
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}

	s.writeJSON(w, code, HealthDTO{Healthy: healthy, Dependencies: status})
}
