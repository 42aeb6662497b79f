package entities

import "time"

type Polarity string

const (
	PolarityPositive Polarity = "like"
	PolarityNegative Polarity = "dislike"
)

// Delta é a contribuição do voto para o score de utilidade da review.
func (p Polarity) Delta() int64 {
	switch p {
	case PolarityPositive:
		return 1
	case PolarityNegative:
		return -1
	}
	return 0
}

func (p Polarity) Valid() bool {
	return p == PolarityPositive || p == PolarityNegative
}

// FriendEdge é a aresta não direcionada de amizade entre dois usuários.
type FriendEdge struct {
	UserID    int64     `json:"user_id"`
	FriendID  int64     `json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Canonical devolve o par ordenado (menor, maior), que é a chave única da aresta.
func (e FriendEdge) Canonical() (int64, int64) {
	if e.UserID < e.FriendID {
		return e.UserID, e.FriendID
	}
	return e.FriendID, e.UserID
}

// Other devolve o outro lado da aresta a partir de um dos usuários.
func (e FriendEdge) Other(userID int64) int64 {
	if e.UserID == userID {
		return e.FriendID
	}
	return e.UserID
}

type LikeEdge struct {
	FilmID    int64     `json:"film_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type VoteEdge struct {
	ReviewID  int64     `json:"review_id"`
	UserID    int64     `json:"user_id"`
	Polarity  Polarity  `json:"polarity"`
	CreatedAt time.Time `json:"created_at"`
}
