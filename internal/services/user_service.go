package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inaciosamuel465/estateflow/internal/auth"
	"github.com/inaciosamuel465/estateflow/internal/config"
	"github.com/inaciosamuel465/estateflow/internal/db"
	"github.com/inaciosamuel465/estateflow/internal/models"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// IUserService defines the interface for account operations.
type IUserService interface {
	CreateUser(ctx context.Context, name, email, phone, password string, role models.Role) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, name, phone, avatar *string) error
	ToggleFavorite(ctx context.Context, userID, propertyID string) ([]string, error)
	DeleteUser(ctx context.Context, id string) error
}

const usersCollection = "users"

// userService implements IUserService.
type userService struct {
	db  *mongo.Database
	cfg *config.Config
}

func NewUserService(db *mongo.Database, cfg *config.Config) IUserService {
	return &userService{db: db, cfg: cfg}
}

func (s *userService) CreateUser(ctx context.Context, name, email, phone, password string, role models.Role) (*models.User, error) {
	collection := s.db.Collection(usersCollection)
	email = strings.ToLower(strings.TrimSpace(email))

	if existing, err := s.FindUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Base:         models.NewBase(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		Role:         role,
		PasswordHash: hash,
		Favorites:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	operation := func() error {
		_, insertErr := collection.InsertOne(ctx, user)
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id, "deleted": false})
}

func (s *userService) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.findOne(ctx, bson.M{"email": email, "deleted": false})
}

func (s *userService) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	collection := s.db.Collection(usersCollection)
	var user models.User
	err := collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	collection := s.db.Collection(usersCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{"deleted": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, name, phone, avatar *string) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if name != nil {
		set["name"] = *name
	}
	if phone != nil {
		set["phone"] = *phone
	}
	if avatar != nil {
		set["avatar"] = *avatar
	}
	return s.updateOne(ctx, id, bson.M{"$set": set})
}

// ToggleFavorite flips the property in the user's favorites set and returns
// the resulting set. The read-modify-write is acceptable because favorites
// belong to a single signed-in user.
func (s *userService) ToggleFavorite(ctx context.Context, userID, propertyID string) ([]string, error) {
	user, err := s.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	favorites := make([]string, 0, len(user.Favorites)+1)
	removed := false
	for _, id := range user.Favorites {
		if id == propertyID {
			removed = true
			continue
		}
		favorites = append(favorites, id)
	}
	if !removed {
		favorites = append(favorites, propertyID)
	}

	err = s.updateOne(ctx, userID, bson.M{"$set": bson.M{
		"favorites":  favorites,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	return s.updateOne(ctx, id, bson.M{"$set": bson.M{"deleted": true, "updated_at": time.Now().UTC()}})
}

func (s *userService) updateOne(ctx context.Context, id string, update bson.M) error {
	collection := s.db.Collection(usersCollection)
	var result *mongo.UpdateResult
	operation := func() error {
		var updateErr error
		result, updateErr = collection.UpdateOne(ctx, bson.M{"_id": id, "deleted": false}, update)
		return updateErr
	}
	if err := db.Try(operation); err != nil {
		return fmt.Errorf("failed to update user %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
