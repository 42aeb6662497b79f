package test_seeder

import (
	"context"

	"filmgraph/src/domain/entities"
)

// SelectFriendshipRows returns the raw canonical rows stored for a pair of users
func (ts TestSeeder) SelectFriendshipRows(ctx context.Context, userID, friendID int64) ([]entities.FriendEdge, error) {
	query := `SELECT user_low, user_high, created_at
			  FROM friendships
			  WHERE (user_low = $1 AND user_high = $2) OR (user_low = $2 AND user_high = $1)`

	rows, err := ts.pool.Query(ctx, query, userID, friendID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []entities.FriendEdge
	for rows.Next() {
		var edge entities.FriendEdge
		if err := rows.Scan(&edge.UserID, &edge.FriendID, &edge.CreatedAt); err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}

	return edges, rows.Err()
}

// SelectVotes returns every vote stored for a review, ordered by user
func (ts TestSeeder) SelectVotes(ctx context.Context, reviewID int64) ([]entities.VoteEdge, error) {
	query := `SELECT review_id, user_id, polarity, created_at
			  FROM review_votes
			  WHERE review_id = $1
			  ORDER BY user_id`

	rows, err := ts.pool.Query(ctx, query, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []entities.VoteEdge
	for rows.Next() {
		var vote entities.VoteEdge
		var polarity string
		if err := rows.Scan(&vote.ReviewID, &vote.UserID, &polarity, &vote.CreatedAt); err != nil {
			return nil, err
		}
		vote.Polarity = entities.Polarity(polarity)
		votes = append(votes, vote)
	}

	return votes, rows.Err()
}

func (ts TestSeeder) SelectUseful(ctx context.Context, reviewID int64) (int64, error) {
	var useful int64
	err := ts.pool.QueryRow(ctx, `SELECT useful FROM reviews WHERE id = $1`, reviewID).Scan(&useful)
	return useful, err
}
