package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/instruktori/tutorialstore/internal/domain"
	pkgkafka "github.com/instruktori/tutorialstore/pkg/kafka"
)

// Kafka topic constants for catalog domain events.
const (
	TopicTutorialCreated = "tutorialstore.tutorial.created"
	TopicTutorialUpdated = "tutorialstore.tutorial.updated"
	TopicTutorialDeleted = "tutorialstore.tutorial.deleted"
	TopicReviewCreated   = "tutorialstore.review.created"
)

const (
	AggregateTypeTutorial = "tutorial"
	AggregateTypeReview   = "review"
)

// Source identifier for events originating from the catalog service.
const SourceCatalogService = "catalog-service"

// Publisher is the event surface the service layer depends on. A failed
// publish never fails the triggering operation, so implementations only
// need best-effort delivery.
type Publisher interface {
	PublishTutorialCreated(ctx context.Context, tutorial *domain.Tutorial) error
	PublishTutorialUpdated(ctx context.Context, tutorial *domain.Tutorial) error
	PublishTutorialDeleted(ctx context.Context, id string) error
	PublishReviewCreated(ctx context.Context, tutorialID string, review *domain.Review) error
}

// TutorialEventData is the payload for tutorial.created and tutorial.updated events.
type TutorialEventData struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Category     string   `json:"category"`
	Price        float64  `json:"price"`
	CountInStock int      `json:"count_in_stock"`
	Images       []string `json:"images,omitempty"`
}

// TutorialDeletedData is the payload for a tutorial.deleted event.
type TutorialDeletedData struct {
	ID string `json:"id"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ID         string `json:"id"`
	TutorialID string `json:"tutorial_id"`
	Name       string `json:"name"`
	Rating     int    `json:"rating"`
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishTutorialCreated publishes a tutorial.created event.
func (p *Producer) PublishTutorialCreated(ctx context.Context, tutorial *domain.Tutorial) error {
	return p.publishTutorial(ctx, TopicTutorialCreated, tutorial)
}

// PublishTutorialUpdated publishes a tutorial.updated event.
func (p *Producer) PublishTutorialUpdated(ctx context.Context, tutorial *domain.Tutorial) error {
	return p.publishTutorial(ctx, TopicTutorialUpdated, tutorial)
}

func (p *Producer) publishTutorial(ctx context.Context, topic string, tutorial *domain.Tutorial) error {
	data := TutorialEventData{
		ID:           tutorial.ID,
		Name:         tutorial.Name,
		Slug:         tutorial.Slug,
		Category:     tutorial.Category,
		Price:        tutorial.Price,
		CountInStock: tutorial.CountInStock,
		Images:       tutorial.Images,
	}

	event, err := pkgkafka.NewEvent(topic, tutorial.ID, AggregateTypeTutorial, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published tutorial event",
		slog.String("topic", topic),
		slog.String("tutorial_id", tutorial.ID),
		slog.String("slug", tutorial.Slug),
	)

	return nil
}

// PublishTutorialDeleted publishes a tutorial.deleted event.
func (p *Producer) PublishTutorialDeleted(ctx context.Context, id string) error {
	data := TutorialDeletedData{ID: id}

	event, err := pkgkafka.NewEvent(TopicTutorialDeleted, id, AggregateTypeTutorial, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create tutorial.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicTutorialDeleted, event); err != nil {
		return fmt.Errorf("publish tutorial.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published tutorial.deleted event",
		slog.String("tutorial_id", id),
	)

	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, tutorialID string, review *domain.Review) error {
	data := ReviewCreatedData{
		ID:         review.ID,
		TutorialID: tutorialID,
		Name:       review.Name,
		Rating:     review.Rating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, tutorialID, AggregateTypeReview, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("tutorial_id", tutorialID),
		slog.String("review_id", review.ID),
	)

	return nil
}

// NoopPublisher discards all events. Used when Kafka is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishTutorialCreated(context.Context, *domain.Tutorial) error { return nil }
func (NoopPublisher) PublishTutorialUpdated(context.Context, *domain.Tutorial) error { return nil }
func (NoopPublisher) PublishTutorialDeleted(context.Context, string) error           { return nil }
func (NoopPublisher) PublishReviewCreated(context.Context, string, *domain.Review) error {
	return nil
}
