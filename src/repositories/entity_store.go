package repositories

import (
	"context"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
)

// FriendEdgeRepository é o backend das arestas de amizade (Postgres ou Neo4j).
type FriendEdgeRepository interface {
	PersistFriendEdge(ctx context.Context, op domain.EdgeOp, userID, friendID int64) (bool, error)
	FriendIDs(ctx context.Context, userID int64) ([]int64, error)
	CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error)
}

// EntityStore junta leituras, escritas, o backend de amizades e o cache de
// contagens num único Entity Store consumido pelos serviços.
type EntityStore struct {
	*EntityQueryRepository
	writes     *EdgeWriteRepository
	friends    FriendEdgeRepository
	likeCounts LikeCountSource
}

type EntityStoreOption func(*EntityStore)

// WithFriendEdges troca o backend de amizades.
func WithFriendEdges(friends FriendEdgeRepository) EntityStoreOption {
	return func(s *EntityStore) {
		s.friends = friends
	}
}

// WithLikeCounts coloca uma fonte de contagens (normalmente o cache) na frente do banco.
func WithLikeCounts(source LikeCountSource) EntityStoreOption {
	return func(s *EntityStore) {
		s.likeCounts = source
	}
}

func NewEntityStore(queries *EntityQueryRepository, writes *EdgeWriteRepository, opts ...EntityStoreOption) *EntityStore {
	store := &EntityStore{
		EntityQueryRepository: queries,
		writes:                writes,
		friends:               friendEdges{queries: queries, writes: writes},
		likeCounts:            queries,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *EntityStore) PersistFriendEdge(ctx context.Context, op domain.EdgeOp, userID, friendID int64) (bool, error) {
	return s.friends.PersistFriendEdge(ctx, op, userID, friendID)
}

func (s *EntityStore) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s.friends.FriendIDs(ctx, userID)
}

func (s *EntityStore) CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error) {
	return s.friends.CommonFriendIDs(ctx, userID, otherID)
}

func (s *EntityStore) PersistLikeEdge(ctx context.Context, op domain.EdgeOp, filmID, userID int64) (bool, error) {
	return s.writes.PersistLikeEdge(ctx, op, filmID, userID)
}

func (s *EntityStore) PersistVoteEdge(ctx context.Context, op domain.EdgeOp, vote entities.VoteEdge) (domain.VoteChange, error) {
	return s.writes.PersistVoteEdge(ctx, op, vote)
}

func (s *EntityStore) LikeCounts(ctx context.Context, filter domain.PopularityFilter) (map[int64]int, error) {
	return s.likeCounts.LikeCounts(ctx, filter)
}

// friendEdges é o backend padrão: amizades na tabela friendships.
type friendEdges struct {
	queries *EntityQueryRepository
	writes  *EdgeWriteRepository
}

func (f friendEdges) PersistFriendEdge(ctx context.Context, op domain.EdgeOp, userID, friendID int64) (bool, error) {
	return f.writes.PersistFriendEdge(ctx, op, userID, friendID)
}

func (f friendEdges) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	return f.queries.FriendIDs(ctx, userID)
}

func (f friendEdges) CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error) {
	return f.queries.CommonFriendIDs(ctx, userID, otherID)
}
