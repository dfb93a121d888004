package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/viatero/expense-system/internal/core/domain"
	"github.com/viatero/expense-system/internal/core/ports"
)

const (
	expenseCollection       = "expenses"
	reimbursementCollection = "reimbursements"
)

// MongoExpenseRepository persists expenses and reimbursement audit records.
type MongoExpenseRepository struct {
	expenses       *mongo.Collection
	reimbursements *mongo.Collection
}

func NewExpenseRepository(db *mongo.Database) *MongoExpenseRepository {
	return &MongoExpenseRepository{
		expenses:       db.Collection(expenseCollection),
		reimbursements: db.Collection(reimbursementCollection),
	}
}

func (r *MongoExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	if _, err := r.expenses.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (r *MongoExpenseRepository) FindByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	var expense domain.Expense
	if err := r.expenses.FindOne(ctx, bson.M{"_id": expenseID}).Decode(&expense); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, fmt.Errorf("find expense: %w", err)
	}
	return &expense, nil
}

func (r *MongoExpenseRepository) List(ctx context.Context, filter ports.ListExpensesFilter) ([]*domain.Expense, error) {
	query := bson.M{"trip_id": filter.TripID}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "incurred_at", Value: -1}})
	cursor, err := r.expenses.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.Expense
	for cursor.Next(ctx) {
		var expense domain.Expense
		if err := cursor.Decode(&expense); err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
		out = append(out, &expense)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

// UpdateStatus filters on the current status so concurrent reviews race
// safely: the loser matches nothing and gets ErrInvalidReview.
func (r *MongoExpenseRepository) UpdateStatus(
	ctx context.Context,
	expenseID string,
	from, to domain.ExpenseStatus,
	reviewerID int64,
	ts time.Time,
	note string,
) error {
	entry := domain.ReviewEntry{
		Status:     to,
		ReviewerID: reviewerID,
		Timestamp:  ts,
		Note:       note,
	}

	res, err := r.expenses.UpdateOne(ctx,
		bson.M{"_id": expenseID, "status": from},
		bson.M{
			"$set": bson.M{
				"status":      to,
				"reviewer_id": reviewerID,
				"reviewed_at": ts,
			},
			"$push": bson.M{"review_history": entry},
		},
	)
	if err != nil {
		return fmt.Errorf("update expense status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvalidReview
	}
	return nil
}

// Totals rolls up amounts by category and by approval status with two group
// stages over the same match.
func (r *MongoExpenseRepository) Totals(ctx context.Context, tripID string) (*ports.TripTotals, error) {
	totals := &ports.TripTotals{
		ByCategory: make(map[string]float64),
		ByStatus:   make(map[string]float64),
	}

	byCategory, err := r.sumBy(ctx, tripID, "$category")
	if err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}
	totals.ByCategory = byCategory

	byStatus, err := r.sumBy(ctx, tripID, "$status")
	if err != nil {
		return nil, fmt.Errorf("totals by status: %w", err)
	}
	totals.ByStatus = byStatus

	return totals, nil
}

func (r *MongoExpenseRepository) sumBy(ctx context.Context, tripID, field string) (map[string]float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"trip_id": tripID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   field,
			"total": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := r.expenses.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make(map[string]float64)
	for cursor.Next(ctx) {
		var row struct {
			Key   string  `bson:"_id"`
			Total float64 `bson:"total"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Key] = row.Total
	}
	return out, cursor.Err()
}

func (r *MongoExpenseRepository) InsertReimbursement(ctx context.Context, rec *domain.Reimbursement) error {
	if _, err := r.reimbursements.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert reimbursement: %w", err)
	}
	return nil
}

func (r *MongoExpenseRepository) DeleteByTrip(ctx context.Context, tripID string) (int64, error) {
	res, err := r.expenses.DeleteMany(ctx, bson.M{"trip_id": tripID})
	if err != nil {
		return 0, fmt.Errorf("delete trip expenses: %w", err)
	}
	return res.DeletedCount, nil
}

var _ ports.ExpenseRepository = (*MongoExpenseRepository)(nil)
