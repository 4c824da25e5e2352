package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abdullaharshad/budget-tracker/internal/models"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error)
	DeleteOwned(ctx context.Context, userID primitive.ObjectID, id string) error
	SummaryByUser(ctx context.Context, userID primitive.ObjectID) (*models.Summary, error)
	Count(ctx context.Context) (int64, error)
}

type mongoTransactionRepo struct {
	col *mongo.Collection
}

func NewMongoTransactionRepo(db *mongo.Database) TransactionRepository {
	col := db.Collection("transactions")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "date", Value: -1}},
	})
	return &mongoTransactionRepo{col: col}
}

func (r *mongoTransactionRepo) Create(ctx context.Context, t *models.Transaction) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, t)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid
	}
	return nil
}

func (r *mongoTransactionRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	cur, err := r.col.Find(ctx, bson.M{"user": userID},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Transaction{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteOwned removes a transaction only when it belongs to the given user.
// A foreign or missing id both come back as ErrTransactionNotFound.
func (r *mongoTransactionRepo) DeleteOwned(ctx context.Context, userID primitive.ObjectID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrTransactionNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid, "user": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *mongoTransactionRepo) SummaryByUser(ctx context.Context, userID primitive.ObjectID) (*models.Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"category": "$category", "type": "$type"},
			"total": bson.M{"$sum": "$amount"},
		}}},
		{{Key: "$sort", Value: bson.M{"total": -1}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID struct {
			Category string `bson:"category"`
			Type     string `bson:"type"`
		} `bson:"_id"`
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	sum := &models.Summary{Categories: []models.CategoryTotal{}}
	for _, row := range rows {
		sum.Categories = append(sum.Categories, models.CategoryTotal{
			Category: row.ID.Category,
			Type:     row.ID.Type,
			Total:    row.Total,
		})
		switch row.ID.Type {
		case models.TransactionTypeIncome:
			sum.TotalIncome += row.Total
		case models.TransactionTypeExpense:
			sum.TotalExpense += row.Total
		}
	}
	sum.Balance = sum.TotalIncome - sum.TotalExpense
	return sum, nil
}

func (r *mongoTransactionRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}
