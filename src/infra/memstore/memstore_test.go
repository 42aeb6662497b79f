package memstore_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
	"filmgraph/src/infra/memstore"
	"filmgraph/src/test_artefacts/stubs"
)

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		store *memstore.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = memstore.New()
	})

	Describe("entities", func() {
		It("should fetch what was put", func() {
			// ARRANGE
			user := stubs.NewUserStub().WithID(7).WithLogin("cinefilo").Get()
			store.PutUser(user)
			store.PutReview(stubs.NewReviewStub().WithID(3).Get())

			// ACT
			fetched, err := store.FetchUser(ctx, 7)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(*fetched).To(Equal(user))

			exists, err := store.ReviewExists(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("should report unknown ids as not found", func() {
			_, err := store.FetchUser(ctx, 1)
			Expect(err).To(MatchError(domain.ErrEntityNotFound))

			_, err = store.FetchFilm(ctx, 1)
			Expect(err).To(MatchError(domain.ErrEntityNotFound))

			exists, err := store.ReviewExists(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("should start every review with a zero score", func() {
			// ARRANGE
			review := stubs.NewReviewStub().WithID(3).Get()
			review.Useful = 99

			// ACT
			store.PutReview(review)

			// ASSERT
			fetched, err := store.FetchReview(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetched.Useful).To(BeZero())
		})

		It("should skip unknown ids in batch fetches and sort the result", func() {
			store.PutUser(stubs.NewUserStub().WithID(5).Get())
			store.PutUser(stubs.NewUserStub().WithID(2).Get())

			users, err := store.FetchUsers(ctx, []int64{5, 404, 2, 5})

			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
			Expect(users[0].ID).To(Equal(int64(2)))
			Expect(users[1].ID).To(Equal(int64(5)))
		})
	})

	Describe("edges", func() {
		It("should keep one friend edge per unordered pair", func() {
			changed, err := store.PersistFriendEdge(ctx, domain.EdgeAdd, 2, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())

			changed, err = store.PersistFriendEdge(ctx, domain.EdgeAdd, 1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())

			changed, err = store.PersistFriendEdge(ctx, domain.EdgeRemove, 1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())

			friends, err := store.FriendIDs(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(friends).To(BeEmpty())
		})

		It("should intersect friend sets in one read", func() {
			// ARRANGE
			for _, pair := range [][2]int64{{1, 3}, {4, 1}, {3, 2}, {2, 4}, {1, 5}} {
				_, err := store.PersistFriendEdge(ctx, domain.EdgeAdd, pair[0], pair[1])
				Expect(err).NotTo(HaveOccurred())
			}

			// ACT
			common, err := store.CommonFriendIDs(ctx, 1, 2)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(common).To(Equal([]int64{3, 4}))

			none, err := store.CommonFriendIDs(ctx, 1, 9)
			Expect(err).NotTo(HaveOccurred())
			Expect(none).NotTo(BeNil())
			Expect(none).To(BeEmpty())
		})

		It("should load the own likes and the candidates that share a film", func() {
			// ARRANGE
			for _, like := range [][2]int64{{10, 1}, {20, 1}, {10, 2}, {30, 2}, {40, 3}} {
				_, err := store.PersistLikeEdge(ctx, domain.EdgeAdd, like[0], like[1])
				Expect(err).NotTo(HaveOccurred())
			}

			// ACT
			neighborhood, err := store.LikeNeighborhood(ctx, 1)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(neighborhood).To(Equal(domain.LikeNeighborhood{
				Own:        []int64{10, 20},
				Candidates: map[int64][]int64{2: {10, 30}},
			}))
		})

		It("should refuse a self edge", func() {
			_, err := store.PersistFriendEdge(ctx, domain.EdgeAdd, 4, 4)
			Expect(err).To(MatchError(domain.ErrInvalidOperation))
		})

		It("should keep the score equal to the vote tally", func() {
			// ARRANGE
			store.PutReview(stubs.NewReviewStub().WithID(1).Get())
			writes := []struct {
				op       domain.EdgeOp
				userID   int64
				polarity entities.Polarity
			}{
				{domain.EdgeAdd, 1, entities.PolarityPositive},
				{domain.EdgeAdd, 2, entities.PolarityPositive},
				{domain.EdgeAdd, 2, entities.PolarityNegative},
				{domain.EdgeRemove, 1, entities.PolarityNegative},
				{domain.EdgeAdd, 3, entities.PolarityNegative},
			}

			// ACT
			var last domain.VoteChange
			for _, w := range writes {
				var err error
				last, err = store.PersistVoteEdge(ctx, w.op, entities.VoteEdge{ReviewID: 1, UserID: w.userID, Polarity: w.polarity})
				Expect(err).NotTo(HaveOccurred())
			}

			// ASSERT
			positive, negative := store.VoteTally(1)
			Expect(positive).To(Equal(1))
			Expect(negative).To(Equal(2))
			Expect(last.Useful).To(Equal(int64(positive - negative)))
		})
	})

	Describe("FailWith", func() {
		It("should fail every operation with a storage error", func() {
			// ARRANGE
			store.FailWith(errors.New("disk full"))

			// ACT
			_, err := store.LikeCounts(ctx, domain.PopularityFilter{})

			// ASSERT
			var storageErr *domain.StorageError
			Expect(errors.As(err, &storageErr)).To(BeTrue())
			Expect(storageErr.Op).To(Equal("like_counts"))

			store.FailWith(nil)
			_, err = store.LikeCounts(ctx, domain.PopularityFilter{})
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
