package domain

import (
	"filmgraph/src/domain/entities"
)

type EdgeOp int

const (
	EdgeAdd EdgeOp = iota + 1
	EdgeRemove
)

func (op EdgeOp) String() string {
	switch op {
	case EdgeAdd:
		return "add"
	case EdgeRemove:
		return "remove"
	}
	return "unknown"
}

// PopularityFilter restringe o ranking por gênero e/ou ano de lançamento.
// Campos nil significam "sem filtro".
type PopularityFilter struct {
	GenreID *int64
	Year    *int
}

func (f PopularityFilter) Matches(film entities.Film) bool {
	if f.GenreID != nil && !film.HasGenre(*f.GenreID) {
		return false
	}
	if f.Year != nil && film.ReleaseDate.Year() != *f.Year {
		return false
	}
	return true
}

// VoteChange descreve o efeito de uma escrita de voto em uma review.
type VoteChange struct {
	Changed  bool
	Previous *entities.Polarity
	Useful   int64
}

// LikeNeighborhood é lido de uma vez só: os likes do usuário (Own) e, para cada
// outro usuário com pelo menos um filme em comum, o conjunto completo de likes.
type LikeNeighborhood struct {
	Own        []int64
	Candidates map[int64][]int64
}

// ScoreDelta calcula o ajuste do score de utilidade ao trocar o voto de um
// usuário de prev para next. Um usuário tem no máximo um voto por review, então
// substituir um voto oposto vale ±2. nil significa ausência de voto.
func ScoreDelta(prev, next *entities.Polarity) int64 {
	var delta int64
	if prev != nil {
		delta -= prev.Delta()
	}
	if next != nil {
		delta += next.Delta()
	}
	return delta
}

// ############################################################
// ################### EVENTOS DE DOMÍNIO #####################
// ############################################################

const (
	EventFriendshipAdded   = "friendship.added"
	EventFriendshipRemoved = "friendship.removed"
	EventLikeAdded         = "like.added"
	EventLikeRemoved       = "like.removed"
	EventVoteAdded         = "vote.added"
	EventVoteRemoved       = "vote.removed"
)

// DomainEvent é o payload publicado depois que uma mudança de aresta foi persistida.
type DomainEvent struct {
	Type       string             `json:"type"`
	UserID     int64              `json:"user_id"`
	FriendID   int64              `json:"friend_id,omitempty"`
	FilmID     int64              `json:"film_id,omitempty"`
	ReviewID   int64              `json:"review_id,omitempty"`
	Polarity   entities.Polarity  `json:"polarity,omitempty"`
	Previous   *entities.Polarity `json:"previous,omitempty"`
	Useful     *int64             `json:"useful,omitempty"`
	OccurredAt int64              `json:"occurred_at"`
}

// AggregateKey é usada como chave de particionamento para manter a ordem por agregado.
func (e DomainEvent) AggregateKey() string {
	switch {
	case e.ReviewID != 0:
		return "review:" + itoa(e.ReviewID)
	case e.FilmID != 0:
		return "film:" + itoa(e.FilmID)
	default:
		low, high := entities.FriendEdge{UserID: e.UserID, FriendID: e.FriendID}.Canonical()
		return "friendship:" + itoa(low) + ":" + itoa(high)
	}
}

// ResolveVote aplica a política de voto exclusivo: dado o voto atual do
// usuário na review (nil se não houver), devolve o voto que deve ficar
// gravado e se houve mudança.
//   - EdgeAdd com a mesma polaridade é no-op; com polaridade oposta substitui.
//   - EdgeRemove só remove quando a polaridade confere.
func ResolveVote(op EdgeOp, current *entities.Polarity, requested entities.Polarity) (*entities.Polarity, bool, error) {
	switch op {
	case EdgeAdd:
		if current != nil && *current == requested {
			return current, false, nil
		}
		next := requested
		return &next, true, nil
	case EdgeRemove:
		if current == nil || *current != requested {
			return current, false, nil
		}
		return nil, true, nil
	}
	return current, false, NewInvalidOperation("unknown edge op %d", op)
}
