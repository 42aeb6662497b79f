package http

import (
	"time"

	"filmgraph/src/domain/entities"
)

type ErrorDTO struct {
	Error string `json:"error"`
}

type HealthDTO struct {
	Healthy      bool              `json:"healthy"`
	Dependencies map[string]string `json:"dependencies"`
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Login    string `json:"login"`
	Name     string `json:"name"`
	Birthday string `json:"birthday,omitempty"`
}

type GenreDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type FilmDTO struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ReleaseDate string     `json:"releaseDate"`
	Duration    int        `json:"duration"`
	Genres      []GenreDTO `json:"genres"`
}

type ReviewDTO struct {
	ID         int64  `json:"reviewId"`
	FilmID     int64  `json:"filmId"`
	UserID     int64  `json:"userId"`
	Content    string `json:"content"`
	IsPositive bool   `json:"isPositive"`
	Useful     int64  `json:"useful"`
}

type LikesDTO struct {
	FilmID  int64   `json:"filmId"`
	UserIDs []int64 `json:"userIds"`
}

const dateLayout = time.DateOnly

func MapUsers(users []entities.User) []UserDTO {
	response := make([]UserDTO, 0, len(users))
	for _, user := range users {
		dto := UserDTO{
			ID:    user.ID,
			Email: user.Email,
			Login: user.Login,
			Name:  user.Name,
		}
		if !user.Birthday.IsZero() {
			dto.Birthday = user.Birthday.Format(dateLayout)
		}
		response = append(response, dto)
	}
	return response
}

func MapFilms(films []entities.Film) []FilmDTO {
	response := make([]FilmDTO, 0, len(films))
	for _, film := range films {
		genres := make([]GenreDTO, 0, len(film.Genres))
		for _, genre := range film.Genres {
			genres = append(genres, GenreDTO{ID: genre.ID, Name: genre.Name})
		}

		response = append(response, FilmDTO{
			ID:          film.ID,
			Name:        film.Name,
			Description: film.Description,
			ReleaseDate: film.ReleaseDate.Format(dateLayout),
			Duration:    film.Duration,
			Genres:      genres,
		})
	}
	return response
}

func MapReview(review *entities.Review) ReviewDTO {
	return ReviewDTO{
		ID:         review.ID,
		FilmID:     review.FilmID,
		UserID:     review.UserID,
		Content:    review.Content,
		IsPositive: review.IsPositive,
		Useful:     review.Useful,
	}
}
