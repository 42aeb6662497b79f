package domain_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
)

func polarity(p entities.Polarity) *entities.Polarity {
	return &p
}

var _ = Describe("Vote policy", func() {
	positive := entities.PolarityPositive
	negative := entities.PolarityNegative

	DescribeTable("ResolveVote",
		func(op domain.EdgeOp, current *entities.Polarity, requested entities.Polarity, expected *entities.Polarity, expectedChanged bool) {
			next, changed, err := domain.ResolveVote(op, current, requested)

			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(Equal(expectedChanged))
			Expect(next).To(Equal(expected))
		},
		Entry("add on an empty slot", domain.EdgeAdd, nil, positive, polarity(positive), true),
		Entry("add the same vote again", domain.EdgeAdd, polarity(positive), positive, polarity(positive), false),
		Entry("add the opposite vote", domain.EdgeAdd, polarity(positive), negative, polarity(negative), true),
		Entry("remove the matching vote", domain.EdgeRemove, polarity(negative), negative, nil, true),
		Entry("remove a non matching vote", domain.EdgeRemove, polarity(positive), negative, polarity(positive), false),
		Entry("remove without any vote", domain.EdgeRemove, nil, positive, nil, false),
	)

	It("should reject an unknown edge op", func() {
		_, changed, err := domain.ResolveVote(domain.EdgeOp(42), nil, positive)

		Expect(changed).To(BeFalse())
		Expect(err).To(MatchError(domain.ErrInvalidOperation))
	})

	DescribeTable("ScoreDelta",
		func(prev, next *entities.Polarity, expected int64) {
			Expect(domain.ScoreDelta(prev, next)).To(Equal(expected))
		},
		Entry("new like", nil, polarity(positive), int64(1)),
		Entry("new dislike", nil, polarity(negative), int64(-1)),
		Entry("like replaced by dislike", polarity(positive), polarity(negative), int64(-2)),
		Entry("dislike replaced by like", polarity(negative), polarity(positive), int64(2)),
		Entry("like removed", polarity(positive), nil, int64(-1)),
		Entry("dislike removed", polarity(negative), nil, int64(1)),
		Entry("nothing", nil, nil, int64(0)),
	)
})

var _ = Describe("PopularityFilter", func() {
	film := entities.Film{
		ID:          1,
		ReleaseDate: time.Date(2010, time.March, 3, 0, 0, 0, 0, time.UTC),
		Genres:      []entities.Genre{{ID: 4, Name: "Thriller"}},
	}

	It("should match everything without filters", func() {
		Expect(domain.PopularityFilter{}.Matches(film)).To(BeTrue())
	})

	It("should match on genre and year", func() {
		genreID, year := int64(4), 2010
		Expect(domain.PopularityFilter{GenreID: &genreID, Year: &year}.Matches(film)).To(BeTrue())
	})

	It("should reject a different genre or year", func() {
		otherGenre, otherYear := int64(5), 2011
		Expect(domain.PopularityFilter{GenreID: &otherGenre}.Matches(film)).To(BeFalse())
		Expect(domain.PopularityFilter{Year: &otherYear}.Matches(film)).To(BeFalse())
	})
})

var _ = Describe("DomainEvent", func() {
	It("should key friendship events by the canonical pair", func() {
		forward := domain.DomainEvent{Type: domain.EventFriendshipAdded, UserID: 9, FriendID: 3}
		backward := domain.DomainEvent{Type: domain.EventFriendshipAdded, UserID: 3, FriendID: 9}

		Expect(forward.AggregateKey()).To(Equal("friendship:3:9"))
		Expect(backward.AggregateKey()).To(Equal(forward.AggregateKey()))
	})

	It("should key engagement events by film or review", func() {
		Expect(domain.DomainEvent{Type: domain.EventLikeAdded, UserID: 1, FilmID: 7}.AggregateKey()).To(Equal("film:7"))
		Expect(domain.DomainEvent{Type: domain.EventVoteAdded, UserID: 1, ReviewID: 8}.AggregateKey()).To(Equal("review:8"))
	})
})
