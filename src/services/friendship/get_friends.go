package friendship

import (
	"context"
	"fmt"
	"slices"
	"time"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
)

// GetFriends retorna os usuários ligados a userID, em ordem crescente de ID.
func (s *FriendshipService) GetFriends(ctx context.Context, userID int64) (friends []entities.User, err error) {
	defer func(start time.Time) { s.recorder.Observe("get_friends", start, err) }(time.Now())

	if err := s.ensureUsers(ctx, userID); err != nil {
		return nil, err
	}

	friendIDs, err := s.edges.FriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("FriendshipService.GetFriends - failed to load friends of %d: %w", userID, domain.AsStorageError("friend_ids", err))
	}

	friends, err = s.fetchUsers(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("FriendshipService.GetFriends - %w", err)
	}

	return friends, nil
}

func sortUsers(users []entities.User) {
	slices.SortFunc(users, func(a, b entities.User) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
