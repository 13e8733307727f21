package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inaciosamuel465/estateflow/internal/config"
	"github.com/inaciosamuel465/estateflow/internal/db"
	"github.com/inaciosamuel465/estateflow/internal/models"
)

// INotificationService defines the interface for admin notification storage.
type INotificationService interface {
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	CreateNotification(ctx context.Context, n models.Notification) error
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Clear(ctx context.Context) error
}

const notificationsCollection = "notifications"

// notificationService implements INotificationService.
type notificationService struct {
	db  *mongo.Database
	cfg *config.Config
}

func NewNotificationService(db *mongo.Database, cfg *config.Config) INotificationService {
	return &notificationService{db: db, cfg: cfg}
}

func (s *notificationService) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	collection := s.db.Collection(notificationsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) CreateNotification(ctx context.Context, n models.Notification) error {
	collection := s.db.Collection(notificationsCollection)
	n.GenIDIfEmpty()

	operation := func() error {
		_, insertErr := collection.InsertOne(ctx, n)
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		return fmt.Errorf("failed to insert notification %s: %w", n.ID, err)
	}
	return nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	collection := s.db.Collection(notificationsCollection)
	var result *mongo.UpdateResult
	operation := func() error {
		var updateErr error
		result, updateErr = collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
		return updateErr
	}
	if err := db.Try(operation); err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context) error {
	collection := s.db.Collection(notificationsCollection)
	operation := func() error {
		_, updateErr := collection.UpdateMany(ctx, bson.M{"read": false}, bson.M{"$set": bson.M{"read": true}})
		return updateErr
	}
	if err := db.Try(operation); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// Clear hard-deletes. Notifications are ephemeral alerts with no audit value.
func (s *notificationService) Clear(ctx context.Context) error {
	collection := s.db.Collection(notificationsCollection)
	operation := func() error {
		_, deleteErr := collection.DeleteMany(ctx, bson.M{})
		return deleteErr
	}
	if err := db.Try(operation); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}
