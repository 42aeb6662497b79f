package stubs

import (
	"time"

	"filmgraph/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type FilmStub struct {
	film entities.Film
}

func NewFilmStub() FilmStub {
	now := time.Now().UTC().Truncate(time.Microsecond)

	film := entities.Film{
		ID:          gofakeit.Int64(),
		Name:        gofakeit.MovieName(),
		Description: gofakeit.Sentence(12),
		ReleaseDate: time.Date(gofakeit.Number(1950, 2024), time.Month(gofakeit.Number(1, 12)), gofakeit.Number(1, 28), 0, 0, 0, 0, time.UTC),
		Duration:    gofakeit.Number(70, 200),
		Genres:      []entities.Genre{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return FilmStub{film: film}
}

func (fs FilmStub) WithID(id int64) FilmStub {
	fs.film.ID = id
	return fs
}

func (fs FilmStub) WithReleaseYear(year int) FilmStub {
	fs.film.ReleaseDate = time.Date(year, fs.film.ReleaseDate.Month(), fs.film.ReleaseDate.Day(), 0, 0, 0, 0, time.UTC)
	return fs
}

func (fs FilmStub) WithGenres(genres ...entities.Genre) FilmStub {
	fs.film.Genres = genres
	return fs
}

func (fs FilmStub) Get() entities.Film {
	return fs.film
}
