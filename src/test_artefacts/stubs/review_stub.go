package stubs

import (
	"time"

	"filmgraph/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type ReviewStub struct {
	review entities.Review
}

func NewReviewStub() ReviewStub {
	now := time.Now().UTC().Truncate(time.Microsecond)

	review := entities.Review{
		ID:         gofakeit.Int64(),
		FilmID:     gofakeit.Int64(),
		UserID:     gofakeit.Int64(),
		Content:    gofakeit.Paragraph(1, 3, 12, " "),
		IsPositive: gofakeit.Bool(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	return ReviewStub{review: review}
}

func (rs ReviewStub) WithID(id int64) ReviewStub {
	rs.review.ID = id
	return rs
}

func (rs ReviewStub) WithFilmID(filmID int64) ReviewStub {
	rs.review.FilmID = filmID
	return rs
}

func (rs ReviewStub) WithUserID(userID int64) ReviewStub {
	rs.review.UserID = userID
	return rs
}

func (rs ReviewStub) Get() entities.Review {
	return rs.review
}
