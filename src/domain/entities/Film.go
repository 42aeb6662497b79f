package entities

import "time"

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Film struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ReleaseDate time.Time `json:"release_date"`
	// Duração em minutos.
	Duration  int       `json:"duration"`
	Genres    []Genre   `json:"genres"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f Film) HasGenre(genreID int64) bool {
	for _, g := range f.Genres {
		if g.ID == genreID {
			return true
		}
	}
	return false
}
