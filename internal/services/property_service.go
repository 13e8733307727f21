package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inaciosamuel465/estateflow/internal/config"
	"github.com/inaciosamuel465/estateflow/internal/db"
	"github.com/inaciosamuel465/estateflow/internal/models"
	"github.com/inaciosamuel465/estateflow/internal/state"
)

// ErrNotFound is returned when a document does not exist or is soft-deleted.
var ErrNotFound = errors.New("not found")

// IPropertyService defines the interface for property-related operations.
type IPropertyService interface {
	CreateProperty(ctx context.Context, p models.Property) error
	FindPropertyByID(ctx context.Context, id string) (*models.Property, error)
	ListProperties(ctx context.Context) ([]models.Property, error)
	SearchProperties(ctx context.Context, filter models.PropertyFilter) ([]models.Property, error)
	UpdateProperty(ctx context.Context, id string, upd state.PropertyUpdate) error
	DeleteProperty(ctx context.Context, id string) error
	SetPropertyStatus(ctx context.Context, id string, status models.PropertyStatus) error
	AddImageToProperty(ctx context.Context, id, imageKey string) error
}

const propertiesCollection = "properties"

// propertyService implements IPropertyService.
type propertyService struct {
	db  *mongo.Database
	cfg *config.Config
}

func NewPropertyService(db *mongo.Database, cfg *config.Config) IPropertyService {
	return &propertyService{db: db, cfg: cfg}
}

func (s *propertyService) CreateProperty(ctx context.Context, p models.Property) error {
	collection := s.db.Collection(propertiesCollection)
	p.GenIDIfEmpty()
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	operation := func() error {
		_, insertErr := collection.InsertOne(ctx, p)
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		return fmt.Errorf("failed to insert property %s: %w", p.ID, err)
	}
	return nil
}

func (s *propertyService) FindPropertyByID(ctx context.Context, id string) (*models.Property, error) {
	collection := s.db.Collection(propertiesCollection)
	var p models.Property
	err := collection.FindOne(ctx, bson.M{"_id": id, "deleted": false}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find property %s: %w", id, err)
	}
	return &p, nil
}

func (s *propertyService) ListProperties(ctx context.Context) ([]models.Property, error) {
	return s.SearchProperties(ctx, models.PropertyFilter{})
}

func (s *propertyService) SearchProperties(ctx context.Context, filter models.PropertyFilter) ([]models.Property, error) {
	collection := s.db.Collection(propertiesCollection)

	query := bson.M{"deleted": false}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.Location != "" {
		query["location"] = bson.M{"$regex": filter.Location, "$options": "i"}
	}
	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return properties, nil
}

func (s *propertyService) UpdateProperty(ctx context.Context, id string, upd state.PropertyUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Image != nil {
		set["image"] = *upd.Image
	}
	if upd.Images != nil {
		set["images"] = *upd.Images
	}
	if upd.Bedrooms != nil {
		set["bedrooms"] = *upd.Bedrooms
	}
	if upd.Bathrooms != nil {
		set["bathrooms"] = *upd.Bathrooms
	}
	if upd.AreaSqM != nil {
		set["area_sqm"] = *upd.AreaSqM
	}
	return s.updateOne(ctx, id, bson.M{"$set": set})
}

func (s *propertyService) SetPropertyStatus(ctx context.Context, id string, status models.PropertyStatus) error {
	return s.updateOne(ctx, id, bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
}

func (s *propertyService) AddImageToProperty(ctx context.Context, id, imageKey string) error {
	update := bson.M{
		"$push": bson.M{"images": imageKey},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	if err := s.updateOne(ctx, id, update); err != nil {
		return err
	}

	// The first image doubles as the listing cover.
	collection := s.db.Collection(propertiesCollection)
	_, err := collection.UpdateOne(ctx,
		bson.M{"_id": id, "deleted": false, "image": ""},
		bson.M{"$set": bson.M{"image": imageKey}})
	if err != nil {
		return fmt.Errorf("failed to set cover image for property %s: %w", id, err)
	}
	return nil
}

// DeleteProperty soft-deletes; the document stays for contract history.
func (s *propertyService) DeleteProperty(ctx context.Context, id string) error {
	return s.updateOne(ctx, id, bson.M{"$set": bson.M{"deleted": true, "updated_at": time.Now().UTC()}})
}

func (s *propertyService) updateOne(ctx context.Context, id string, update bson.M) error {
	collection := s.db.Collection(propertiesCollection)
	var result *mongo.UpdateResult
	operation := func() error {
		var updateErr error
		result, updateErr = collection.UpdateOne(ctx, bson.M{"_id": id, "deleted": false}, update)
		return updateErr
	}
	if err := db.Try(operation); err != nil {
		return fmt.Errorf("failed to update property %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
