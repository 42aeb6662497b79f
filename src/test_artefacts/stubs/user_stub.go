package stubs

import (
	"time"

	"filmgraph/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type UserStub struct {
	user entities.User
}

func NewUserStub() UserStub {
	now := time.Now().UTC().Truncate(time.Microsecond)
	birthday := gofakeit.DateRange(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC))

	user := entities.User{
		ID:        gofakeit.Int64(),
		Email:     gofakeit.Email(),
		Login:     gofakeit.Username(),
		Name:      gofakeit.Name(),
		Birthday:  time.Date(birthday.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC),
		CreatedAt: now,
		UpdatedAt: now,
	}

	return UserStub{user: user}
}

func (us UserStub) WithID(id int64) UserStub {
	us.user.ID = id
	return us
}

func (us UserStub) WithLogin(login string) UserStub {
	us.user.Login = login
	return us
}

func (us UserStub) Get() entities.User {
	return us.user
}
