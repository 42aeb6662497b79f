package recommendation

import (
	"slices"

	"filmgraph/src/domain/entities"
)

// Neighbor é o usuário escolhido pela maior interseção de likes.
type Neighbor struct {
	UserID  int64
	Overlap int
}

// NearestNeighbor escolhe, entre os candidatos, o usuário com a maior
// interseção positiva com likeSet. Empates vão para o menor ID de usuário.
// O próprio userID é ignorado se aparecer entre os candidatos.
func NearestNeighbor(userID int64, likeSet []int64, candidates map[int64][]int64) (Neighbor, bool) {
	own := make(map[int64]struct{}, len(likeSet))
	for _, filmID := range likeSet {
		own[filmID] = struct{}{}
	}

	var best Neighbor
	found := false

	for candidateID, candidateLikes := range candidates {
		if candidateID == userID {
			continue
		}

		overlap := 0
		seen := make(map[int64]struct{}, len(candidateLikes))
		for _, filmID := range candidateLikes {
			if _, dup := seen[filmID]; dup {
				continue
			}
			seen[filmID] = struct{}{}
			if _, ok := own[filmID]; ok {
				overlap++
			}
		}

		if overlap == 0 {
			continue
		}

		if !found || overlap > best.Overlap || (overlap == best.Overlap && candidateID < best.UserID) {
			best = Neighbor{UserID: candidateID, Overlap: overlap}
			found = true
		}
	}

	return best, found
}

// Difference devolve os IDs de from que não estão em exclude, ordenados e sem repetição.
func Difference(from, exclude []int64) []int64 {
	excluded := make(map[int64]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	result := make([]int64, 0, len(from))
	for _, id := range from {
		if _, ok := excluded[id]; ok {
			continue
		}
		excluded[id] = struct{}{}
		result = append(result, id)
	}

	slices.Sort(result)
	return result
}

func sortFilms(films []entities.Film) {
	slices.SortFunc(films, func(a, b entities.Film) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
