package friendship

import (
	"context"
	"fmt"
	"time"

	"filmgraph/src/domain"
)

// AddFriend cria a aresta de amizade entre os dois usuários. Chamar duas vezes
// deixa o mesmo estado que chamar uma vez.
func (s *FriendshipService) AddFriend(ctx context.Context, userID, friendID int64) (err error) {
	defer func(start time.Time) { s.recorder.Observe("add_friend", start, err) }(time.Now())

	if userID == friendID {
		return domain.NewInvalidOperation("user %d cannot befriend themselves", userID)
	}

	if err := s.ensureUsers(ctx, userID, friendID); err != nil {
		return err
	}

	changed, err := s.edges.PersistFriendEdge(ctx, domain.EdgeAdd, userID, friendID)
	if err != nil {
		return fmt.Errorf("FriendshipService.AddFriend - failed to persist edge (%d, %d): %w", userID, friendID, domain.AsStorageError("persist_friend_edge", err))
	}

	if changed {
		s.logger.Debug("Friendship created", "user_id", userID, "friend_id", friendID)
		s.emit(ctx, domain.EventFriendshipAdded, userID, friendID)
	}

	return nil
}
