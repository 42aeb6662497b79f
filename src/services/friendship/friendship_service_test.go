package friendship_test

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
	"filmgraph/src/infra/metrics"
	"filmgraph/src/services/friendship"
	"filmgraph/src/test_artefacts/comparer"
	"filmgraph/src/test_artefacts/fakes"
	"filmgraph/src/test_artefacts/stubs"

	"github.com/prometheus/client_golang/prometheus"
)

var _ = Describe("FriendshipService", func() {
	var (
		ctx               context.Context
		store             *memstore.Store
		publisher         *fakes.RecordingPublisher
		friendshipService *friendship.FriendshipService
		users             map[int64]entities.User
	)

	seedUsers := func(ids ...int64) {
		for _, id := range ids {
			user := stubs.NewUserStub().WithID(id).Get()
			store.PutUser(user)
			users[id] = user
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = memstore.New()
		publisher = fakes.NewRecordingPublisher()
		users = make(map[int64]entities.User)

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		recorder := metrics.NewRecorder(prometheus.NewRegistry())
		friendshipService = friendship.NewFriendshipService(logger, store, store, publisher, recorder)

		seedUsers(1, 2, 3, 4)
	})

	Describe("AddFriend", func() {
		When("both users exist", func() {
			It("should make the friendship visible from both sides", func() {
				// ACT
				err := friendshipService.AddFriend(ctx, 1, 2)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())

				friendsOfOne, err := friendshipService.GetFriends(ctx, 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(friendsOfOne).To(BeComparableTo([]entities.User{users[2]}))

				friendsOfTwo, err := friendshipService.GetFriends(ctx, 2)
				Expect(err).NotTo(HaveOccurred())
				Expect(friendsOfTwo).To(BeComparableTo([]entities.User{users[1]}))

				Expect(publisher.Types()).To(Equal([]string{domain.EventFriendshipAdded}))
			})

			It("should be idempotent and publish a single event", func() {
				// ACT
				Expect(friendshipService.AddFriend(ctx, 1, 2)).To(Succeed())
				Expect(friendshipService.AddFriend(ctx, 1, 2)).To(Succeed())
				Expect(friendshipService.AddFriend(ctx, 2, 1)).To(Succeed())

				// ASSERT
				friends, err := friendshipService.GetFriends(ctx, 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(friends).To(BeComparableTo([]entities.User{users[2]}, comparer.UserIDs()))
				Expect(publisher.Types()).To(HaveLen(1))
			})
		})

		When("the user tries to befriend themselves", func() {
			It("should return invalid operation without touching the store", func() {
				// ARRANGE
				store.FailWith(errors.New("store must not be called"))

				// ACT
				err := friendshipService.AddFriend(ctx, 1, 1)

				// ASSERT
				Expect(err).To(MatchError(domain.ErrInvalidOperation))
				Expect(publisher.Events()).To(BeEmpty())
			})

			It("should reject the self pair even for an unknown user", func() {
				// ACT
				err := friendshipService.AddFriend(ctx, 999, 999)

				// ASSERT
				Expect(err).To(MatchError(domain.ErrInvalidOperation))
			})
		})

		When("one of the users does not exist", func() {
			It("should return not found and create no edge", func() {
				// ACT
				err := friendshipService.AddFriend(ctx, 1, 999)

				// ASSERT
				Expect(err).To(MatchError(domain.ErrEntityNotFound))

				var notFound *domain.NotFoundError
				Expect(errors.As(err, &notFound)).To(BeTrue())
				Expect(notFound.Kind).To(Equal(domain.KindUser))
				Expect(notFound.ID).To(Equal(int64(999)))

				friends, err := friendshipService.GetFriends(ctx, 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(friends).To(BeEmpty())
			})
		})

		When("the store fails", func() {
			It("should surface a storage error", func() {
				// ARRANGE
				store.FailWith(errors.New("connection reset"))

				// ACT
				err := friendshipService.AddFriend(ctx, 1, 2)

				// ASSERT
				Expect(err).To(MatchError(domain.ErrStorage))
				Expect(err).NotTo(MatchError(domain.ErrEntityNotFound))
			})
		})

		When("the event publisher fails", func() {
			It("should still persist the friendship", func() {
				// ARRANGE
				publisher.Err = errors.New("broker down")

				// ACT
				err := friendshipService.AddFriend(ctx, 1, 2)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				friends, err := friendshipService.GetFriends(ctx, 2)
				Expect(err).NotTo(HaveOccurred())
				Expect(friends).To(BeComparableTo([]entities.User{users[1]}, comparer.UserIDs()))
			})
		})

		When("two users race to befriend each other", func() {
			It("should end with exactly one symmetric edge", func() {
				// ACT
				var wg sync.WaitGroup
				for i := 0; i < 50; i++ {
					wg.Add(2)
					go func() {
						defer wg.Done()
						defer GinkgoRecover()
						Expect(friendshipService.AddFriend(ctx, 1, 2)).To(Succeed())
					}()
					go func() {
						defer wg.Done()
						defer GinkgoRecover()
						Expect(friendshipService.AddFriend(ctx, 2, 1)).To(Succeed())
					}()
				}
				wg.Wait()

				// ASSERT
				Expect(publisher.Types()).To(HaveLen(1))

				friendsOfOne, err := friendshipService.GetFriends(ctx, 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(friendsOfOne).To(BeComparableTo([]entities.User{users[2]}, comparer.UserIDs()))

				friendsOfTwo, err := friendshipService.GetFriends(ctx, 2)
				Expect(err).NotTo(HaveOccurred())
				Expect(friendsOfTwo).To(BeComparableTo([]entities.User{users[1]}, comparer.UserIDs()))
			})
		})
	})

	Describe("RemoveFriend", func() {
		BeforeEach(func() {
			Expect(friendshipService.AddFriend(ctx, 1, 2)).To(Succeed())
		})

		It("should remove the edge from both sides", func() {
			// ACT
			err := friendshipService.RemoveFriend(ctx, 2, 1)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			for _, id := range []int64{1, 2} {
				friends, err := friendshipService.GetFriends(ctx, id)
				Expect(err).NotTo(HaveOccurred())
				Expect(friends).To(BeEmpty())
			}
			Expect(publisher.Types()).To(Equal([]string{domain.EventFriendshipAdded, domain.EventFriendshipRemoved}))
		})

		It("should treat a missing edge as a no-op", func() {
			// ACT
			err := friendshipService.RemoveFriend(ctx, 3, 4)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.Types()).To(Equal([]string{domain.EventFriendshipAdded}))
		})

		It("should treat the self pair as a no-op", func() {
			// ACT
			err := friendshipService.RemoveFriend(ctx, 1, 1)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			friends, err := friendshipService.GetFriends(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(friends).To(BeComparableTo([]entities.User{users[2]}, comparer.UserIDs()))
		})

		It("should reject unknown users", func() {
			// ACT
			err := friendshipService.RemoveFriend(ctx, 1, 999)

			// ASSERT
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
		})
	})

	Describe("GetFriends", func() {
		It("should return friends ordered by ascending id", func() {
			// ARRANGE
			Expect(friendshipService.AddFriend(ctx, 1, 4)).To(Succeed())
			Expect(friendshipService.AddFriend(ctx, 3, 1)).To(Succeed())
			Expect(friendshipService.AddFriend(ctx, 1, 2)).To(Succeed())

			// ACT
			friends, err := friendshipService.GetFriends(ctx, 1)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(friends).To(BeComparableTo([]entities.User{users[2], users[3], users[4]}))
		})

		It("should return an empty list for a user without friends", func() {
			// ACT
			friends, err := friendshipService.GetFriends(ctx, 3)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(friends).NotTo(BeNil())
			Expect(friends).To(BeEmpty())
		})

		It("should return not found for an unknown user", func() {
			// ACT
			friends, err := friendshipService.GetFriends(ctx, 999)

			// ASSERT
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
			Expect(friends).To(BeNil())
		})
	})

	Describe("GetCommonFriends", func() {
		It("should return the intersection of both friend sets", func() {
			// ARRANGE
			seedUsers(5)
			Expect(friendshipService.AddFriend(ctx, 1, 3)).To(Succeed())
			Expect(friendshipService.AddFriend(ctx, 2, 3)).To(Succeed())
			Expect(friendshipService.AddFriend(ctx, 1, 4)).To(Succeed())
			Expect(friendshipService.AddFriend(ctx, 2, 5)).To(Succeed())

			// ACT
			common, err := friendshipService.GetCommonFriends(ctx, 1, 2)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(common).To(BeComparableTo([]entities.User{users[3]}))
		})

		It("should not include either user even when they are friends", func() {
			// ARRANGE
			Expect(friendshipService.AddFriend(ctx, 1, 2)).To(Succeed())

			// ACT
			common, err := friendshipService.GetCommonFriends(ctx, 1, 2)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(common).To(BeEmpty())
		})

		It("should be symmetric", func() {
			// ARRANGE
			Expect(friendshipService.AddFriend(ctx, 1, 3)).To(Succeed())
			Expect(friendshipService.AddFriend(ctx, 2, 3)).To(Succeed())
			Expect(friendshipService.AddFriend(ctx, 1, 4)).To(Succeed())
			Expect(friendshipService.AddFriend(ctx, 2, 4)).To(Succeed())

			// ACT
			left, err := friendshipService.GetCommonFriends(ctx, 1, 2)
			Expect(err).NotTo(HaveOccurred())
			right, err := friendshipService.GetCommonFriends(ctx, 2, 1)
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(left).To(BeComparableTo([]entities.User{users[3], users[4]}))
			Expect(right).To(BeComparableTo(left))
		})

		It("should validate both users", func() {
			// ACT
			_, err := friendshipService.GetCommonFriends(ctx, 1, 999)

			// ASSERT
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
		})

		It("should read both friend sets from the same snapshot", func() {
			// ARRANGE
			Expect(friendshipService.AddFriend(ctx, 1, 3)).To(Succeed())

			// 1-3 sai e 2-3 entra logo depois da primeira leitura de arestas;
			// em nenhum estado 3 é amigo dos dois ao mesmo tempo
			edges := &interleavingEdgeStore{Store: store, afterRead: func() {
				_, err := store.PersistFriendEdge(ctx, domain.EdgeRemove, 1, 3)
				Expect(err).NotTo(HaveOccurred())
				_, err = store.PersistFriendEdge(ctx, domain.EdgeAdd, 2, 3)
				Expect(err).NotTo(HaveOccurred())
			}}
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			service := friendship.NewFriendshipService(logger, store, edges, publisher, nil)

			// ACT
			common, err := service.GetCommonFriends(ctx, 1, 2)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(common).NotTo(BeNil())
			Expect(common).To(BeEmpty())

			after, err := service.GetCommonFriends(ctx, 1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(BeEmpty())
		})
	})
})

// interleavingEdgeStore aplica afterRead uma única vez, logo depois da primeira
// leitura de arestas de amizade.
type interleavingEdgeStore struct {
	*memstore.Store
	once      sync.Once
	afterRead func()
}

func (s *interleavingEdgeStore) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := s.Store.FriendIDs(ctx, userID)
	s.once.Do(s.afterRead)
	return ids, err
}

func (s *interleavingEdgeStore) CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error) {
	ids, err := s.Store.CommonFriendIDs(ctx, userID, otherID)
	s.once.Do(s.afterRead)
	return ids, err
}
