package entities

import "time"

// O conjunto de amigos não é guardado no usuário: ele é derivado das arestas de amizade.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Login     string    `json:"login"`
	Name      string    `json:"name"`
	Birthday  time.Time `json:"birthday"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
