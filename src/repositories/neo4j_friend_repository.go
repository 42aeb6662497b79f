package repositories

import (
	"context"
	"fmt"
	"sort"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jFriendRepository guarda as arestas de amizade como um único
// relacionamento FRIENDS_WITH por par, sempre do menor para o maior ID.
// A existência dos usuários continua sendo validada no Postgres.
type Neo4jFriendRepository struct {
	driver neo4j.DriverWithContext
}

func NewNeo4jFriendRepository(driver neo4j.DriverWithContext) *Neo4jFriendRepository {
	return &Neo4jFriendRepository{driver: driver}
}

func (r *Neo4jFriendRepository) PersistFriendEdge(ctx context.Context, op domain.EdgeOp, userID, friendID int64) (bool, error) {
	if userID == friendID {
		return false, domain.NewInvalidOperation("friend edge needs two distinct users")
	}

	low, high := entities.FriendEdge{UserID: userID, FriendID: friendID}.Canonical()

	var query string
	switch op {
	case domain.EdgeAdd:
		// MERGE de relacionamento não é atômico entre transações: o SET trava os
		// dois nós (sempre low antes de high) e o segundo MERGE concorrente
		// já encontra o relacionamento criado pelo primeiro
		query = `
			MERGE (a:User {id: $low})
			MERGE (b:User {id: $high})
			SET a._lock = true, b._lock = true
			MERGE (a)-[r:FRIENDS_WITH]->(b)
			ON CREATE SET r.created_at = datetime()
			REMOVE a._lock, b._lock
		`
	case domain.EdgeRemove:
		query = `
			MATCH (:User {id: $low})-[r:FRIENDS_WITH]->(:User {id: $high})
			DELETE r
		`
	default:
		return false, domain.NewInvalidOperation("unknown edge op %d", op)
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	changed, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"low": low, "high": high})
		if err != nil {
			return false, err
		}

		summary, err := res.Consume(ctx)
		if err != nil {
			return false, err
		}

		counters := summary.Counters()
		return counters.RelationshipsCreated() > 0 || counters.RelationshipsDeleted() > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("Neo4jFriendRepository.PersistFriendEdge - failed to %s friendship: %w", op, domain.NewStorageError("persist_friend_edge", err))
	}

	return changed.(bool), nil
}

func (r *Neo4jFriendRepository) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	// sem direção: o relacionamento é lido pelos dois lados
	ids, err := r.readFriendIDs(ctx, `
		MATCH (:User {id: $userId})-[:FRIENDS_WITH]-(f:User)
		RETURN DISTINCT f.id AS friendId
	`, map[string]any{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("Neo4jFriendRepository.FriendIDs - query failed: %w", domain.NewStorageError("friend_ids", err))
	}
	return ids, nil
}

// CommonFriendIDs casa os dois lados num único MATCH. Com userID == otherID o
// padrão exigiria dois relacionamentos distintos até o mesmo amigo, por isso
// esse caso cai em FriendIDs.
func (r *Neo4jFriendRepository) CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error) {
	if userID == otherID {
		return r.FriendIDs(ctx, userID)
	}

	ids, err := r.readFriendIDs(ctx, `
		MATCH (:User {id: $userId})-[:FRIENDS_WITH]-(f:User)-[:FRIENDS_WITH]-(:User {id: $otherId})
		RETURN DISTINCT f.id AS friendId
	`, map[string]any{"userId": userID, "otherId": otherID})
	if err != nil {
		return nil, fmt.Errorf("Neo4jFriendRepository.CommonFriendIDs - query failed: %w", domain.NewStorageError("common_friend_ids", err))
	}
	return ids, nil
}

func (r *Neo4jFriendRepository) readFriendIDs(ctx context.Context, query string, params map[string]any) ([]int64, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}

		ids := make([]int64, 0)
		for res.Next(ctx) {
			id, _, err := neo4j.GetRecordValue[int64](res.Record(), "friendId")
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, res.Err()
	})
	if err != nil {
		return nil, err
	}

	ids := result.([]int64)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
