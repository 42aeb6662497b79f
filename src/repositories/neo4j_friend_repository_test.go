package repositories_test

import (
	"context"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"filmgraph/src/domain"
	"filmgraph/src/helper/env"
	graphdb "filmgraph/src/infra/neo4j"
	"filmgraph/src/repositories"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var _ = Describe("Neo4jFriendRepository", func() {
	var (
		ctx        context.Context
		driver     neo4j.DriverWithContext
		repository *repositories.Neo4jFriendRepository
		err        error
	)

	uri := env.GetString("TEST_NEO4J_URI", "")
	user := env.GetString("TEST_NEO4J_USER", "neo4j")
	password := env.GetString("TEST_NEO4J_PASSWORD", "neo4j")

	// IDs altos para não colidir com outros dados do banco de teste
	const alice, bob, carol = int64(900001), int64(900002), int64(900003)

	BeforeEach(func() {
		if uri == "" {
			Skip("TEST_NEO4J_URI not set")
		}

		ctx = context.Background()
		driver, err = graphdb.NewNeo4jClient(ctx, uri, user, password)
		Expect(err).NotTo(HaveOccurred())
		Expect(graphdb.EnsureSchema(ctx, driver)).To(Succeed())

		_, err = neo4j.ExecuteQuery(ctx, driver,
			`MATCH (u:User) WHERE u.id IN $ids DETACH DELETE u`,
			map[string]any{"ids": []int64{alice, bob, carol}},
			neo4j.EagerResultTransformer)
		Expect(err).NotTo(HaveOccurred())

		repository = repositories.NewNeo4jFriendRepository(driver)
	})

	AfterEach(func() {
		if driver != nil {
			_ = driver.Close(ctx)
		}
	})

	It("should create a single relationship readable from both sides", func() {
		// ACT
		changed, err := repository.PersistFriendEdge(ctx, domain.EdgeAdd, bob, alice)
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(BeTrue())

		changed, err = repository.PersistFriendEdge(ctx, domain.EdgeAdd, alice, bob)
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(BeFalse())

		// ASSERT
		result, err := neo4j.ExecuteQuery(ctx, driver,
			`MATCH (:User {id: $a})-[r:FRIENDS_WITH]-(:User {id: $b}) RETURN count(DISTINCT r) AS total`,
			map[string]any{"a": alice, "b": bob},
			neo4j.EagerResultTransformer)
		Expect(err).NotTo(HaveOccurred())
		total, _, err := neo4j.GetRecordValue[int64](result.Records[0], "total")
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(int64(1)))

		fromAlice, err := repository.FriendIDs(ctx, alice)
		Expect(err).NotTo(HaveOccurred())
		fromBob, err := repository.FriendIDs(ctx, bob)
		Expect(err).NotTo(HaveOccurred())
		Expect(fromAlice).To(Equal([]int64{bob}))
		Expect(fromBob).To(Equal([]int64{alice}))
	})

	It("should remove the relationship from either side", func() {
		// ARRANGE
		_, err := repository.PersistFriendEdge(ctx, domain.EdgeAdd, alice, carol)
		Expect(err).NotTo(HaveOccurred())
		_, err = repository.PersistFriendEdge(ctx, domain.EdgeAdd, alice, bob)
		Expect(err).NotTo(HaveOccurred())

		// ACT
		changed, err := repository.PersistFriendEdge(ctx, domain.EdgeRemove, carol, alice)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(BeTrue())

		friends, err := repository.FriendIDs(ctx, alice)
		Expect(err).NotTo(HaveOccurred())
		Expect(friends).To(Equal([]int64{bob}))

		changed, err = repository.PersistFriendEdge(ctx, domain.EdgeRemove, carol, alice)
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(BeFalse())
	})

	It("should create one relationship and report one change under concurrent adds", func() {
		// ARRANGE
		const writers = 8
		var created atomic.Int32
		var wg sync.WaitGroup

		// ACT
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()

				userID, friendID := alice, bob
				if i%2 == 1 {
					userID, friendID = bob, alice
				}
				changed, err := repository.PersistFriendEdge(ctx, domain.EdgeAdd, userID, friendID)
				Expect(err).NotTo(HaveOccurred())
				if changed {
					created.Add(1)
				}
			}(i)
		}
		wg.Wait()

		// ASSERT
		Expect(created.Load()).To(Equal(int32(1)))

		result, err := neo4j.ExecuteQuery(ctx, driver,
			`MATCH (:User {id: $a})-[r:FRIENDS_WITH]-(:User {id: $b}) RETURN count(DISTINCT r) AS total`,
			map[string]any{"a": alice, "b": bob},
			neo4j.EagerResultTransformer)
		Expect(err).NotTo(HaveOccurred())
		total, _, err := neo4j.GetRecordValue[int64](result.Records[0], "total")
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(int64(1)))
	})

	It("should intersect friend sets in a single match", func() {
		// ARRANGE
		_, err := repository.PersistFriendEdge(ctx, domain.EdgeAdd, alice, carol)
		Expect(err).NotTo(HaveOccurred())
		_, err = repository.PersistFriendEdge(ctx, domain.EdgeAdd, carol, bob)
		Expect(err).NotTo(HaveOccurred())
		_, err = repository.PersistFriendEdge(ctx, domain.EdgeAdd, alice, bob)
		Expect(err).NotTo(HaveOccurred())

		// ACT
		common, err := repository.CommonFriendIDs(ctx, alice, bob)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(common).To(Equal([]int64{carol}))

		self, err := repository.CommonFriendIDs(ctx, alice, alice)
		Expect(err).NotTo(HaveOccurred())
		Expect(self).To(Equal([]int64{bob, carol}))
	})

	It("should return an empty list for a user without relationships", func() {
		friends, err := repository.FriendIDs(ctx, carol)

		Expect(err).NotTo(HaveOccurred())
		Expect(friends).To(BeEmpty())
	})
})
