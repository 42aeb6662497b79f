package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
	"filmgraph/src/infra/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeCountInvalidator descarta contagens de likes em cache que incluem os filmes.
type LikeCountInvalidator interface {
	InvalidateByFilmIDs(ctx context.Context, filmIDs []int64) error
}

// EdgeWriteRepository grava arestas de amizade, like e voto no pool de escrita.
type EdgeWriteRepository struct {
	logger      *slog.Logger
	writePool   *pgxpool.Pool
	invalidator LikeCountInvalidator
}

// invalidator pode ser nil quando não há cache na frente das contagens.
func NewEdgeWriteRepository(logger *slog.Logger, writePool *pgxpool.Pool, invalidator LikeCountInvalidator) *EdgeWriteRepository {
	return &EdgeWriteRepository{
		logger:      logger,
		writePool:   writePool,
		invalidator: invalidator,
	}
}

type fkTarget struct {
	kind domain.EntityKind
	id   int64
}

// notFoundFromFK traduz uma violação de FK no NotFoundError da entidade referenciada.
func notFoundFromFK(err error, targets map[string]fkTarget) error {
	constraint, ok := postgres.ForeignKeyViolation(err)
	if !ok {
		return nil
	}
	if target, ok := targets[constraint]; ok {
		return domain.NewNotFound(target.kind, target.id)
	}
	return nil
}

// ############################################################
// ###################### FRIENDSHIP ##########################
// ############################################################

// PersistFriendEdge escreve uma única linha para o par canônico. A chave
// (user_low, user_high) garante que a amizade é simétrica.
func (r *EdgeWriteRepository) PersistFriendEdge(ctx context.Context, op domain.EdgeOp, userID, friendID int64) (bool, error) {
	if userID == friendID {
		return false, domain.NewInvalidOperation("friend edge needs two distinct users")
	}

	low, high := entities.FriendEdge{UserID: userID, FriendID: friendID}.Canonical()

	var query string
	switch op {
	case domain.EdgeAdd:
		query = `INSERT INTO friendships (user_low, user_high) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	case domain.EdgeRemove:
		query = `DELETE FROM friendships WHERE user_low = $1 AND user_high = $2`
	default:
		return false, domain.NewInvalidOperation("unknown edge op %d", op)
	}

	tag, err := r.writePool.Exec(ctx, query, low, high)
	if err != nil {
		if notFound := notFoundFromFK(err, map[string]fkTarget{
			"friendships_user_low_fkey":  {kind: domain.KindUser, id: low},
			"friendships_user_high_fkey": {kind: domain.KindUser, id: high},
		}); notFound != nil {
			return false, notFound
		}
		return false, fmt.Errorf("EdgeWriteRepository.PersistFriendEdge - failed to %s friendship: %w", op, domain.NewStorageError("persist_friend_edge", err))
	}

	return tag.RowsAffected() == 1, nil
}

// ############################################################
// ######################### LIKES ############################
// ############################################################

func (r *EdgeWriteRepository) PersistLikeEdge(ctx context.Context, op domain.EdgeOp, filmID, userID int64) (bool, error) {
	var query string
	switch op {
	case domain.EdgeAdd:
		query = `INSERT INTO film_likes (film_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	case domain.EdgeRemove:
		query = `DELETE FROM film_likes WHERE film_id = $1 AND user_id = $2`
	default:
		return false, domain.NewInvalidOperation("unknown edge op %d", op)
	}

	tag, err := r.writePool.Exec(ctx, query, filmID, userID)
	if err != nil {
		if notFound := notFoundFromFK(err, map[string]fkTarget{
			"film_likes_film_id_fkey": {kind: domain.KindFilm, id: filmID},
			"film_likes_user_id_fkey": {kind: domain.KindUser, id: userID},
		}); notFound != nil {
			return false, notFound
		}
		return false, fmt.Errorf("EdgeWriteRepository.PersistLikeEdge - failed to %s like: %w", op, domain.NewStorageError("persist_like_edge", err))
	}

	changed := tag.RowsAffected() == 1
	if changed {
		r.invalidate(ctx, filmID)
	}

	return changed, nil
}

// invalidate roda depois do commit. Falha de cache não desfaz a escrita.
func (r *EdgeWriteRepository) invalidate(ctx context.Context, filmID int64) {
	if r.invalidator == nil {
		return
	}
	if err := r.invalidator.InvalidateByFilmIDs(ctx, []int64{filmID}); err != nil {
		r.logger.Error("Failed to invalidate like-count cache", "error", err, "film_id", filmID)
	}
}

// ############################################################
// ######################### VOTES ############################
// ############################################################

// PersistVoteEdge trava a linha da review, resolve o voto exclusivo e aplica o
// delta no score dentro da mesma transação.
func (r *EdgeWriteRepository) PersistVoteEdge(ctx context.Context, op domain.EdgeOp, vote entities.VoteEdge) (domain.VoteChange, error) {
	tx, err := r.writePool.Begin(ctx)
	if err != nil {
		return domain.VoteChange{}, fmt.Errorf("EdgeWriteRepository.PersistVoteEdge - failed to begin transaction: %w", domain.NewStorageError("persist_vote_edge", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var useful int64
	err = tx.QueryRow(ctx, `SELECT useful FROM reviews WHERE id = $1 FOR UPDATE`, vote.ReviewID).Scan(&useful)
	if postgres.IsNoRows(err) {
		return domain.VoteChange{}, domain.NewNotFound(domain.KindReview, vote.ReviewID)
	}
	if err != nil {
		return domain.VoteChange{}, fmt.Errorf("EdgeWriteRepository.PersistVoteEdge - failed to lock review: %w", domain.NewStorageError("persist_vote_edge", err))
	}

	previous, err := currentVote(ctx, tx, vote.ReviewID, vote.UserID)
	if err != nil {
		return domain.VoteChange{}, err
	}

	next, changed, err := domain.ResolveVote(op, previous, vote.Polarity)
	if err != nil {
		return domain.VoteChange{}, err
	}
	if !changed {
		return domain.VoteChange{Previous: previous, Useful: useful}, nil
	}

	if next == nil {
		_, err = tx.Exec(ctx, `DELETE FROM review_votes WHERE review_id = $1 AND user_id = $2`, vote.ReviewID, vote.UserID)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO review_votes (review_id, user_id, polarity)
			VALUES ($1, $2, $3)
			ON CONFLICT (review_id, user_id) DO UPDATE SET
				polarity = excluded.polarity,
				created_at = NOW()
		`, vote.ReviewID, vote.UserID, string(*next))
	}
	if err != nil {
		if notFound := notFoundFromFK(err, map[string]fkTarget{
			"review_votes_user_id_fkey": {kind: domain.KindUser, id: vote.UserID},
		}); notFound != nil {
			return domain.VoteChange{}, notFound
		}
		return domain.VoteChange{}, fmt.Errorf("EdgeWriteRepository.PersistVoteEdge - failed to write vote: %w", domain.NewStorageError("persist_vote_edge", err))
	}

	err = tx.QueryRow(ctx, `
		UPDATE reviews SET useful = useful + $2, updated_at = NOW() WHERE id = $1 RETURNING useful
	`, vote.ReviewID, domain.ScoreDelta(previous, next)).Scan(&useful)
	if err != nil {
		return domain.VoteChange{}, fmt.Errorf("EdgeWriteRepository.PersistVoteEdge - failed to update useful score: %w", domain.NewStorageError("persist_vote_edge", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.VoteChange{}, fmt.Errorf("EdgeWriteRepository.PersistVoteEdge - failed to commit: %w", domain.NewStorageError("persist_vote_edge", err))
	}

	return domain.VoteChange{Changed: true, Previous: previous, Useful: useful}, nil
}

func currentVote(ctx context.Context, tx pgx.Tx, reviewID, userID int64) (*entities.Polarity, error) {
	var polarity string
	err := tx.QueryRow(ctx, `SELECT polarity FROM review_votes WHERE review_id = $1 AND user_id = $2`, reviewID, userID).Scan(&polarity)
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("EdgeWriteRepository.PersistVoteEdge - failed to read current vote: %w", domain.NewStorageError("persist_vote_edge", err))
	}

	current := entities.Polarity(polarity)
	return &current, nil
}
