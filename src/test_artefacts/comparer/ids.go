package comparer

import (
	"github.com/google/go-cmp/cmp"

	"filmgraph/src/domain/entities"
)

// UserIDs compara slices de usuários só pelos IDs, na ordem.
func UserIDs() cmp.Option {
	return cmp.Transformer("UserIDs", func(users []entities.User) []int64 {
		ids := make([]int64, len(users))
		for i, user := range users {
			ids[i] = user.ID
		}
		return ids
	})
}

// FilmIDs compara slices de filmes só pelos IDs, na ordem.
func FilmIDs() cmp.Option {
	return cmp.Transformer("FilmIDs", func(films []entities.Film) []int64 {
		ids := make([]int64, len(films))
		for i, film := range films {
			ids[i] = film.ID
		}
		return ids
	})
}
