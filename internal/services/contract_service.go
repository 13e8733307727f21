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

// IContractService defines the interface for contract-related operations.
type IContractService interface {
	CreateContract(ctx context.Context, c models.Contract) error
	FindContractByID(ctx context.Context, id string) (*models.Contract, error)
	ListContracts(ctx context.Context) ([]models.Contract, error)
	ListExpiringContracts(ctx context.Context, within time.Duration) ([]models.Contract, error)
	UpdateContract(ctx context.Context, id string, upd state.ContractUpdate) error
	DeleteContract(ctx context.Context, id string) error
	FinancialTotals(ctx context.Context) (state.FinancialSummary, error)
}

const contractsCollection = "contracts"

// contractService implements IContractService.
type contractService struct {
	db  *mongo.Database
	cfg *config.Config
}

func NewContractService(db *mongo.Database, cfg *config.Config) IContractService {
	return &contractService{db: db, cfg: cfg}
}

func (s *contractService) CreateContract(ctx context.Context, c models.Contract) error {
	collection := s.db.Collection(contractsCollection)
	c.GenIDIfEmpty()
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	operation := func() error {
		_, insertErr := collection.InsertOne(ctx, c)
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		return fmt.Errorf("failed to insert contract %s: %w", c.ID, err)
	}
	return nil
}

func (s *contractService) FindContractByID(ctx context.Context, id string) (*models.Contract, error) {
	collection := s.db.Collection(contractsCollection)
	var c models.Contract
	err := collection.FindOne(ctx, bson.M{"_id": id, "deleted": false}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find contract %s: %w", id, err)
	}
	return &c, nil
}

func (s *contractService) ListContracts(ctx context.Context) ([]models.Contract, error) {
	collection := s.db.Collection(contractsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{"deleted": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer cursor.Close(ctx)

	var contracts []models.Contract
	if err := cursor.All(ctx, &contracts); err != nil {
		return nil, fmt.Errorf("failed to decode contracts: %w", err)
	}
	return contracts, nil
}

// ListExpiringContracts returns active contracts whose end date falls inside
// the window. Open-ended contracts never match.
func (s *contractService) ListExpiringContracts(ctx context.Context, within time.Duration) ([]models.Contract, error) {
	collection := s.db.Collection(contractsCollection)
	now := time.Now().UTC()
	query := bson.M{
		"deleted": false,
		"status":  models.ContractActive,
		"end_date": bson.M{
			"$gte": now,
			"$lte": now.Add(within),
		},
	}
	cursor, err := collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "end_date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring contracts: %w", err)
	}
	defer cursor.Close(ctx)

	var contracts []models.Contract
	if err := cursor.All(ctx, &contracts); err != nil {
		return nil, fmt.Errorf("failed to decode expiring contracts: %w", err)
	}
	return contracts, nil
}

func (s *contractService) UpdateContract(ctx context.Context, id string, upd state.ContractUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.Value != nil {
		set["value"] = *upd.Value
	}
	if upd.CommissionRate != nil {
		set["commission_rate"] = *upd.CommissionRate
	}
	if upd.DueDay != nil {
		set["due_day"] = *upd.DueDay
	}
	if upd.NextPaymentStatus != nil {
		set["next_payment_status"] = *upd.NextPaymentStatus
	}
	if upd.InstallmentsPaid != nil {
		set["installments_paid"] = *upd.InstallmentsPaid
	}
	setOrUnsetTime(set, unset, "end_date", upd.EndDate)
	setOrUnsetTime(set, unset, "last_payment_date", upd.LastPaymentDate)
	setOrUnsetTime(set, unset, "owner_paid_date", upd.OwnerPaidDate)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return s.updateOne(ctx, id, update)
}

// DeleteContract soft-deletes, keeping the row for financial history.
func (s *contractService) DeleteContract(ctx context.Context, id string) error {
	return s.updateOne(ctx, id, bson.M{"$set": bson.M{"deleted": true, "updated_at": time.Now().UTC()}})
}

// FinancialTotals aggregates the contract book server-side. The in-memory
// store derives the same numbers for the live dashboard; this path backs the
// report exports, which must not depend on what happens to be loaded.
func (s *contractService) FinancialTotals(ctx context.Context) (state.FinancialSummary, error) {
	collection := s.db.Collection(contractsCollection)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"deleted": false}}},
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"total_value": bson.M{"$sum": "$value"},
			"commission": bson.M{"$sum": bson.M{
				"$divide": bson.A{bson.M{"$multiply": bson.A{"$value", "$commission_rate"}}, 100},
			}},
			"active": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.ContractActive}}, 1, 0},
			}},
			"pending_payouts": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$ifNull": bson.A{"$owner_paid_date", false}}, 0, 1},
			}},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return state.FinancialSummary{}, fmt.Errorf("failed to aggregate financials: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalValue     float64 `bson:"total_value"`
		Commission     float64 `bson:"commission"`
		Active         int     `bson:"active"`
		PendingPayouts int     `bson:"pending_payouts"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return state.FinancialSummary{}, fmt.Errorf("failed to decode financials: %w", err)
	}
	if len(rows) == 0 {
		return state.FinancialSummary{}, nil
	}
	return state.FinancialSummary{
		ActiveContracts:     rows[0].Active,
		TotalContractValue:  rows[0].TotalValue,
		CommissionRevenue:   rows[0].Commission,
		PendingOwnerPayouts: rows[0].PendingPayouts,
	}, nil
}

func setOrUnsetTime(set, unset bson.M, field string, v **time.Time) {
	if v == nil {
		return
	}
	if *v == nil {
		unset[field] = ""
		return
	}
	set[field] = **v
}

func (s *contractService) updateOne(ctx context.Context, id string, update bson.M) error {
	collection := s.db.Collection(contractsCollection)
	var result *mongo.UpdateResult
	operation := func() error {
		var updateErr error
		result, updateErr = collection.UpdateOne(ctx, bson.M{"_id": id, "deleted": false}, update)
		return updateErr
	}
	if err := db.Try(operation); err != nil {
		return fmt.Errorf("failed to update contract %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
