package engagement_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
	"filmgraph/src/infra/memstore"
	"filmgraph/src/services/engagement"
	"filmgraph/src/test_artefacts/fakes"
	"filmgraph/src/test_artefacts/stubs"
)

var _ = Describe("Votes", func() {
	const reviewID = int64(7)

	var (
		ctx               context.Context
		store             *memstore.Store
		publisher         *fakes.RecordingPublisher
		engagementService *engagement.EngagementService
	)

	// usefulMatchesTally verifica que o score é sempre positivos - negativos.
	usefulMatchesTally := func(review *entities.Review) {
		positive, negative := store.VoteTally(reviewID)
		Expect(review.Useful).To(Equal(int64(positive - negative)))

		stored, err := store.FetchReview(ctx, reviewID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Useful).To(Equal(review.Useful))
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = memstore.New()
		publisher = fakes.NewRecordingPublisher()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		engagementService = engagement.NewEngagementService(logger, store, publisher, nil)

		for _, id := range []int64{1, 2, 3, 4} {
			store.PutUser(stubs.NewUserStub().WithID(id).Get())
		}
		store.PutFilm(stubs.NewFilmStub().WithID(10).Get())
		store.PutReview(stubs.NewReviewStub().WithID(reviewID).WithFilmID(10).WithUserID(1).Get())
	})

	Describe("AddVote", func() {
		It("should increase the score on a like", func() {
			// ACT
			review, err := engagementService.AddVote(ctx, reviewID, 2, entities.PolarityPositive)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(review.ID).To(Equal(reviewID))
			Expect(review.Useful).To(Equal(int64(1)))
			usefulMatchesTally(review)

			events := publisher.Events()
			Expect(events).To(HaveLen(1))
			Expect(events[0].Type).To(Equal(domain.EventVoteAdded))
			Expect(events[0].Polarity).To(Equal(entities.PolarityPositive))
			Expect(events[0].Previous).To(BeNil())
			Expect(*events[0].Useful).To(Equal(int64(1)))
		})

		It("should decrease the score on a dislike", func() {
			// ACT
			review, err := engagementService.AddVote(ctx, reviewID, 2, entities.PolarityNegative)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(review.Useful).To(Equal(int64(-1)))
			usefulMatchesTally(review)
		})

		It("should be a no-op when the same vote is repeated", func() {
			// ACT
			_, err := engagementService.AddVote(ctx, reviewID, 2, entities.PolarityPositive)
			Expect(err).NotTo(HaveOccurred())
			review, err := engagementService.AddVote(ctx, reviewID, 2, entities.PolarityPositive)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(review.Useful).To(Equal(int64(1)))
			Expect(publisher.Types()).To(HaveLen(1))
			usefulMatchesTally(review)
		})

		It("should replace an opposite vote and move the score by two", func() {
			// ARRANGE
			_, err := engagementService.AddVote(ctx, reviewID, 2, entities.PolarityPositive)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			review, err := engagementService.AddVote(ctx, reviewID, 2, entities.PolarityNegative)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(review.Useful).To(Equal(int64(-1)))
			usefulMatchesTally(review)

			positive, negative := store.VoteTally(reviewID)
			Expect(positive).To(Equal(0))
			Expect(negative).To(Equal(1))

			events := publisher.Events()
			Expect(events).To(HaveLen(2))
			Expect(events[1].Previous).NotTo(BeNil())
			Expect(*events[1].Previous).To(Equal(entities.PolarityPositive))
		})

		It("should reject an unknown polarity", func() {
			// ACT
			review, err := engagementService.AddVote(ctx, reviewID, 2, entities.Polarity("meh"))

			// ASSERT
			Expect(err).To(MatchError(domain.ErrInvalidOperation))
			Expect(review).To(BeNil())
		})

		It("should return not found for an unknown review", func() {
			// ACT
			_, err := engagementService.AddVote(ctx, 999, 2, entities.PolarityPositive)

			// ASSERT
			var notFound *domain.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.Kind).To(Equal(domain.KindReview))
		})

		It("should return not found for an unknown user", func() {
			// ACT
			_, err := engagementService.AddVote(ctx, reviewID, 999, entities.PolarityPositive)

			// ASSERT
			var notFound *domain.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.Kind).To(Equal(domain.KindUser))
		})

		It("should keep the score consistent under concurrent votes", func() {
			// ACT
			var wg sync.WaitGroup
			for _, userID := range []int64{1, 2, 3, 4} {
				for _, polarity := range []entities.Polarity{entities.PolarityPositive, entities.PolarityNegative} {
					wg.Add(1)
					go func(userID int64, polarity entities.Polarity) {
						defer wg.Done()
						defer GinkgoRecover()
						_, err := engagementService.AddVote(ctx, reviewID, userID, polarity)
						Expect(err).NotTo(HaveOccurred())
					}(userID, polarity)
				}
			}
			wg.Wait()

			// ASSERT
			review, err := store.FetchReview(ctx, reviewID)
			Expect(err).NotTo(HaveOccurred())
			usefulMatchesTally(review)

			positive, negative := store.VoteTally(reviewID)
			Expect(positive + negative).To(Equal(4))
		})
	})

	Describe("RemoveVote", func() {
		BeforeEach(func() {
			_, err := engagementService.AddVote(ctx, reviewID, 2, entities.PolarityPositive)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should remove a matching vote and restore the score", func() {
			// ACT
			review, err := engagementService.RemoveVote(ctx, reviewID, 2, entities.PolarityPositive)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(review.Useful).To(Equal(int64(0)))
			usefulMatchesTally(review)
			Expect(publisher.Types()).To(Equal([]string{domain.EventVoteAdded, domain.EventVoteRemoved}))
		})

		It("should ignore a vote of the other polarity", func() {
			// ACT
			review, err := engagementService.RemoveVote(ctx, reviewID, 2, entities.PolarityNegative)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(review.Useful).To(Equal(int64(1)))
			usefulMatchesTally(review)
			Expect(publisher.Types()).To(HaveLen(1))
		})

		It("should be a no-op for a user that never voted", func() {
			// ACT
			review, err := engagementService.RemoveVote(ctx, reviewID, 3, entities.PolarityPositive)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(review.Useful).To(Equal(int64(1)))
		})

		It("should return not found for an unknown review", func() {
			// ACT
			_, err := engagementService.RemoveVote(ctx, 999, 2, entities.PolarityPositive)

			// ASSERT
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
		})
	})

	Describe("Scenario: like then dislike by different users", func() {
		It("should net to zero", func() {
			// ACT
			_, err := engagementService.AddVote(ctx, reviewID, 2, entities.PolarityPositive)
			Expect(err).NotTo(HaveOccurred())
			review, err := engagementService.AddVote(ctx, reviewID, 3, entities.PolarityNegative)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(review.Useful).To(Equal(int64(0)))
			usefulMatchesTally(review)
		})
	})
})
