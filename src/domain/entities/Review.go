package entities

import "time"

type Review struct {
	ID         int64  `json:"id"`
	FilmID     int64  `json:"film_id"`
	UserID     int64  `json:"user_id"`
	Content    string `json:"content"`
	IsPositive bool   `json:"is_positive"`
	// Useful é sempre a soma dos deltas dos votos presentes na review.
	Useful    int64     `json:"useful"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
