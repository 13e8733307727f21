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

// IChatService defines the interface for conversation persistence.
type IChatService interface {
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	SaveMessage(ctx context.Context, convID string, msg models.ChatMessage, meta models.ConversationMeta) error
	MarkConversationRead(ctx context.Context, convID string) error
}

const conversationsCollection = "conversations"

// chatService implements IChatService.
type chatService struct {
	db  *mongo.Database
	cfg *config.Config
}

func NewChatService(db *mongo.Database, cfg *config.Config) IChatService {
	return &chatService{db: db, cfg: cfg}
}

func (s *chatService) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	collection := s.db.Collection(conversationsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	return conversations, nil
}

// SaveMessage upserts the conversation document: pushes the message, refreshes
// the denormalized header fields, and bumps the unread counter for messages
// from the user side.
func (s *chatService) SaveMessage(ctx context.Context, convID string, msg models.ChatMessage, meta models.ConversationMeta) error {
	collection := s.db.Collection(conversationsCollection)

	unreadDelta := 0
	if msg.Sender == models.SenderUser {
		unreadDelta = 1
	}
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set": bson.M{
			"user_name":         meta.UserName,
			"user_avatar":       meta.UserAvatar,
			"user_role":         meta.UserRole,
			"last_message":      msg.Text,
			"last_message_time": msg.SentAt,
			"updated_at":        msg.SentAt,
		},
		"$inc": bson.M{"unread_count": unreadDelta},
	}

	operation := func() error {
		_, updateErr := collection.UpdateOne(ctx, bson.M{"_id": convID}, update, options.Update().SetUpsert(true))
		return updateErr
	}
	if err := db.Try(operation); err != nil {
		return fmt.Errorf("failed to save message to conversation %s: %w", convID, err)
	}
	return nil
}

func (s *chatService) MarkConversationRead(ctx context.Context, convID string) error {
	collection := s.db.Collection(conversationsCollection)
	update := bson.M{
		"$set": bson.M{
			"unread_count":      0,
			"messages.$[].read": true,
		},
	}

	var result *mongo.UpdateResult
	operation := func() error {
		var updateErr error
		result, updateErr = collection.UpdateOne(ctx, bson.M{"_id": convID}, update)
		return updateErr
	}
	if err := db.Try(operation); err != nil {
		return fmt.Errorf("failed to mark conversation %s read: %w", convID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
