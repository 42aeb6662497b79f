package consumers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"filmgraph/src/adapters/kafka/consumers"
	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
	"filmgraph/src/infra/kafka"
	"filmgraph/src/infra/memstore"
	"filmgraph/src/services/engagement"
	"filmgraph/src/test_artefacts/fakes"
	"filmgraph/src/test_artefacts/stubs"
)

var _ = Describe("EngagementConsumer", func() {
	var (
		ctx       context.Context
		store     *memstore.Store
		publisher *fakes.RecordingPublisher
		consumer  *consumers.EngagementConsumer
	)

	message := func(command consumers.EngagementCommand) kafka.Message {
		value, err := json.Marshal(command)
		Expect(err).NotTo(HaveOccurred())
		return kafka.Message{Key: command.Action, Value: value}
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = memstore.New()
		publisher = fakes.NewRecordingPublisher()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		consumer = consumers.NewEngagementConsumer(logger, engagement.NewEngagementService(logger, store, publisher, nil))

		store.PutUser(stubs.NewUserStub().WithID(1).Get())
		store.PutUser(stubs.NewUserStub().WithID(2).Get())
		store.PutFilm(stubs.NewFilmStub().WithID(10).Get())
		store.PutReview(stubs.NewReviewStub().WithID(100).WithFilmID(10).WithUserID(1).Get())
	})

	It("should apply every command of the batch in order", func() {
		// ARRANGE
		batch := []kafka.Message{
			message(consumers.EngagementCommand{Action: consumers.ActionLikeAdd, FilmID: 10, UserID: 1}),
			message(consumers.EngagementCommand{Action: consumers.ActionLikeAdd, FilmID: 10, UserID: 2}),
			message(consumers.EngagementCommand{Action: consumers.ActionLikeRemove, FilmID: 10, UserID: 1}),
			message(consumers.EngagementCommand{Action: consumers.ActionVoteAdd, ReviewID: 100, UserID: 2, Polarity: entities.PolarityPositive}),
			message(consumers.EngagementCommand{Action: consumers.ActionVoteAdd, ReviewID: 100, UserID: 1, Polarity: entities.PolarityNegative}),
			message(consumers.EngagementCommand{Action: consumers.ActionVoteRemove, ReviewID: 100, UserID: 1, Polarity: entities.PolarityNegative}),
		}

		// ACT
		err := consumer.HandleMessages(ctx, batch)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())

		likedBy, err := store.LikedBy(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(likedBy).To(Equal([]int64{2}))

		review, err := store.FetchReview(ctx, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(review.Useful).To(Equal(int64(1)))

		Expect(publisher.Types()).To(Equal([]string{
			domain.EventLikeAdded,
			domain.EventLikeAdded,
			domain.EventLikeRemoved,
			domain.EventVoteAdded,
			domain.EventVoteAdded,
			domain.EventVoteRemoved,
		}))
	})

	It("should skip poison messages and keep going", func() {
		// ARRANGE
		batch := []kafka.Message{
			{Key: "garbage", Value: []byte("{not json")},
			message(consumers.EngagementCommand{Action: "share.add", FilmID: 10, UserID: 1}),
			message(consumers.EngagementCommand{Action: consumers.ActionLikeAdd, FilmID: 999, UserID: 1}),
			message(consumers.EngagementCommand{Action: consumers.ActionVoteAdd, ReviewID: 100, UserID: 1, Polarity: "meh"}),
			message(consumers.EngagementCommand{Action: consumers.ActionLikeAdd, FilmID: 10, UserID: 1}),
		}

		// ACT
		err := consumer.HandleMessages(ctx, batch)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())

		likedBy, err := store.LikedBy(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(likedBy).To(Equal([]int64{1}))
		Expect(publisher.Types()).To(Equal([]string{domain.EventLikeAdded}))
	})

	It("should fail the batch on storage errors so it is redelivered", func() {
		// ARRANGE
		store.FailWith(errors.New("too many connections"))
		batch := []kafka.Message{
			message(consumers.EngagementCommand{Action: consumers.ActionLikeAdd, FilmID: 10, UserID: 1}),
		}

		// ACT
		err := consumer.HandleMessages(ctx, batch)

		// ASSERT
		Expect(err).To(MatchError(domain.ErrStorage))
		Expect(err.Error()).To(ContainSubstring("key like.add"))
		Expect(publisher.Events()).To(BeEmpty())
	})

	It("should accept an empty batch", func() {
		Expect(consumer.HandleMessages(ctx, nil)).To(Succeed())
	})
})
