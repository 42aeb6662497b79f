package friendship

import (
	"context"
	"fmt"
	"time"

	"filmgraph/src/domain"
)

// RemoveFriend apaga a aresta nos dois sentidos. Remover uma aresta que não existe é no-op.
func (s *FriendshipService) RemoveFriend(ctx context.Context, userID, friendID int64) (err error) {
	defer func(start time.Time) { s.recorder.Observe("remove_friend", start, err) }(time.Now())

	if err := s.ensureUsers(ctx, userID, friendID); err != nil {
		return err
	}

	// a aresta (A, A) nunca existe
	if userID == friendID {
		return nil
	}

	changed, err := s.edges.PersistFriendEdge(ctx, domain.EdgeRemove, userID, friendID)
	if err != nil {
		return fmt.Errorf("FriendshipService.RemoveFriend - failed to persist edge (%d, %d): %w", userID, friendID, domain.AsStorageError("persist_friend_edge", err))
	}

	if changed {
		s.logger.Debug("Friendship removed", "user_id", userID, "friend_id", friendID)
		s.emit(ctx, domain.EventFriendshipRemoved, userID, friendID)
	}

	return nil
}
