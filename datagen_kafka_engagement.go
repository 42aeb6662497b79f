//go:build datagen_kafka_engagement
// +build datagen_kafka_engagement

package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"filmgraph/src/adapters/kafka/consumers"
	"filmgraph/src/domain/entities"
	"filmgraph/src/infra/kafka"

	"github.com/go-faker/faker/v4"
)

// Peso de cada ação no tráfego gerado
var actionWeights = []struct {
	action string
	weight float64
}{
	{consumers.ActionLikeAdd, 0.45},
	{consumers.ActionLikeRemove, 0.10},
	{consumers.ActionVoteAdd, 0.35},
	{consumers.ActionVoteRemove, 0.10},
}

func pickAction() string {
	r := rand.Float64()
	for _, aw := range actionWeights {
		if r < aw.weight {
			return aw.action
		}
		r -= aw.weight
	}
	return consumers.ActionLikeAdd
}

func pickPolarity() entities.Polarity {
	if rand.Float32() < 0.7 {
		return entities.PolarityPositive
	}
	return entities.PolarityNegative
}

// generateCommand cria um comando sobre IDs no intervalo [1, max]. Uma fração
// aponta para IDs inexistentes para exercitar o descarte de poison messages.
func generateCommand(maxUserID, maxFilmID, maxReviewID int64, invalidRatio float64) consumers.EngagementCommand {
	command := consumers.EngagementCommand{
		Action: pickAction(),
		UserID: rand.Int63n(maxUserID) + 1,
	}

	switch command.Action {
	case consumers.ActionLikeAdd, consumers.ActionLikeRemove:
		command.FilmID = rand.Int63n(maxFilmID) + 1
	default:
		command.ReviewID = rand.Int63n(maxReviewID) + 1
		command.Polarity = pickPolarity()
	}

	if rand.Float64() < invalidRatio {
		command.UserID += maxUserID
	}

	return command
}

// messageKey mantém na mesma partição os comandos do mesmo filme/review.
func messageKey(command consumers.EngagementCommand) string {
	if command.ReviewID != 0 {
		return "review:" + strconv.FormatInt(command.ReviewID, 10)
	}
	return "film:" + strconv.FormatInt(command.FilmID, 10)
}

func main() {
	// Command line flags
	totalMessages := flag.Int("count", 1000, "Total number of commands to generate. Use -1 for infinite.")
	batchSize := flag.Int("batch-size", 100, "Number of commands per batch")
	topic := flag.String("topic", "", "Kafka topic to send commands to (required)")
	brokers := flag.String("brokers", "", "Kafka brokers (comma-separated) (required)")
	maxUserID := flag.Int64("max-user-id", 1000, "Highest seeded user id")
	maxFilmID := flag.Int64("max-film-id", 300, "Highest seeded film id")
	maxReviewID := flag.Int64("max-review-id", 2000, "Highest seeded review id")
	invalidRatio := flag.Float64("invalid-ratio", 0.02, "Fraction of commands pointing to unknown users")
	delayMs := flag.Int("delay-ms", 100, "Delay in milliseconds between batches")
	flag.Parse()

	// Validate required flags
	if *topic == "" {
		log.Fatal("The 'topic' flag is required")
	}
	if *brokers == "" {
		log.Fatal("The 'brokers' flag is required")
	}

	isInfinite := *totalMessages == -1
	if isInfinite {
		log.Printf("Starting engagement datagen in INFINITE mode with batches of %d", *batchSize)
	} else {
		log.Printf("Starting engagement datagen with %d commands in batches of %d", *totalMessages, *batchSize)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Só producer: sem group id o consumer group não é criado
	kafkaClient, err := kafka.NewKafkaClient(logger, *brokers, "", *batchSize)
	if err != nil {
		log.Fatalf("Failed to create Kafka client: %v", err)
	}
	defer kafkaClient.Close()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping...")
		cancel()
	}()

	messagesSent := 0
	startTime := time.Now()

	for isInfinite || messagesSent < *totalMessages {
		select {
		case <-ctx.Done():
			log.Println("Shutdown requested, stopping command generation")
			return
		default:
		}

		currentBatchSize := *batchSize
		if !isInfinite {
			currentBatchSize = min(currentBatchSize, *totalMessages-messagesSent)
		}

		kafkaMessages := make([]kafka.Message, 0, currentBatchSize)
		for i := 0; i < currentBatchSize; i++ {
			command := generateCommand(*maxUserID, *maxFilmID, *maxReviewID, *invalidRatio)

			msgBytes, err := json.Marshal(command)
			if err != nil {
				log.Printf("Failed to marshal command: %v", err)
				continue
			}

			kafkaMessages = append(kafkaMessages, kafka.Message{
				Key:     messageKey(command),
				Value:   msgBytes,
				Headers: map[string]string{"source_service": "datagen", "command_id": faker.UUIDHyphenated()},
			})
		}

		if err := kafkaClient.Producer(ctx, kafkaMessages, *topic); err != nil {
			log.Printf("Failed to send batch: %v", err)
			continue
		}

		messagesSent += len(kafkaMessages)

		// Progress logging
		if messagesSent%500 == 0 || (!isInfinite && messagesSent == *totalMessages) {
			elapsed := time.Since(startTime)
			rate := float64(messagesSent) / elapsed.Seconds()
			log.Printf("Sent %d commands (%.1f msg/sec)", messagesSent, rate)
		}

		// Delay between batches
		if *delayMs > 0 && (isInfinite || messagesSent < *totalMessages) {
			time.Sleep(time.Duration(*delayMs) * time.Millisecond)
		}
	}

	elapsed := time.Since(startTime)
	log.Printf("✅ Completed! Sent %d commands in %v (%.1f msg/sec)", messagesSent, elapsed, float64(messagesSent)/elapsed.Seconds())
}
