package friendship

import (
	"context"
	"fmt"
	"time"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
)

// GetCommonFriends é a interseção de GetFriends(userID) e GetFriends(otherID),
// lida do store de uma vez só.
func (s *FriendshipService) GetCommonFriends(ctx context.Context, userID, otherID int64) (common []entities.User, err error) {
	defer func(start time.Time) { s.recorder.Observe("get_common_friends", start, err) }(time.Now())

	if err := s.ensureUsers(ctx, userID, otherID); err != nil {
		return nil, err
	}

	commonIDs, err := s.edges.CommonFriendIDs(ctx, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("FriendshipService.GetCommonFriends - failed to load common friends of %d and %d: %w", userID, otherID, domain.AsStorageError("common_friend_ids", err))
	}

	common, err = s.fetchUsers(ctx, commonIDs)
	if err != nil {
		return nil, fmt.Errorf("FriendshipService.GetCommonFriends - %w", err)
	}

	return common, nil
}
