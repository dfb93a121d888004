package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/viatero/expense-system/internal/core/domain"
	"github.com/viatero/expense-system/internal/core/ports"
)

const tripCollection = "trips"

// MongoTripRepository persists trips. Domain structs carry bson tags, so
// documents map directly.
type MongoTripRepository struct {
	coll *mongo.Collection
}

func NewTripRepository(db *mongo.Database) *MongoTripRepository {
	return &MongoTripRepository{coll: db.Collection(tripCollection)}
}

func (r *MongoTripRepository) Create(ctx context.Context, t *domain.Trip) error {
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

func (r *MongoTripRepository) FindByID(ctx context.Context, tripID string) (*domain.Trip, error) {
	var trip domain.Trip
	if err := r.coll.FindOne(ctx, bson.M{"_id": tripID}).Decode(&trip); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrTripNotFound
		}
		return nil, fmt.Errorf("find trip: %w", err)
	}
	return &trip, nil
}

func (r *MongoTripRepository) Update(ctx context.Context, t *domain.Trip) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": t.ID},
		bson.M{"$set": bson.M{
			"destination": t.Destination,
			"purpose":     t.Purpose,
			"start_date":  t.StartDate,
			"end_date":    t.EndDate,
		}},
	)
	if err != nil {
		return fmt.Errorf("update trip: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTripNotFound
	}
	return nil
}

func (r *MongoTripRepository) Delete(ctx context.Context, tripID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": tripID})
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTripNotFound
	}
	return nil
}

func (r *MongoTripRepository) List(ctx context.Context, filter ports.ListTripsFilter) ([]*domain.Trip, error) {
	query := bson.M{}
	if filter.UserID != 0 {
		query["user_id"] = filter.UserID
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.Trip
	for cursor.Next(ctx) {
		var trip domain.Trip
		if err := cursor.Decode(&trip); err != nil {
			return nil, fmt.Errorf("list trips: %w", err)
		}
		out = append(out, &trip)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return out, nil
}

var _ ports.TripRepository = (*MongoTripRepository)(nil)
