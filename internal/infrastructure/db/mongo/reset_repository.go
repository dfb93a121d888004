package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/viatero/expense-system/internal/core/domain"
	"github.com/viatero/expense-system/internal/core/ports"
)

const resetCollection = "password_resets"

// MongoResetRepository persists password recovery codes. Expired rows are
// never swept here; verification rejects them on read.
type MongoResetRepository struct {
	coll *mongo.Collection
}

func NewResetRepository(db *mongo.Database) *MongoResetRepository {
	return &MongoResetRepository{coll: db.Collection(resetCollection)}
}

type mongoReset struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    int64              `bson:"user_id"`
	Code      string             `bson:"code"`
	ExpiresAt time.Time          `bson:"expires_at"`
	Consumed  bool               `bson:"consumed"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *MongoResetRepository) Insert(ctx context.Context, req *domain.ResetRequest) error {
	doc := mongoReset{
		UserID:    req.UserID,
		Code:      req.Code,
		ExpiresAt: req.ExpiresAt,
		Consumed:  false,
		CreatedAt: req.CreatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert reset request: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid.Hex()
	}
	return nil
}

// FindActive matches on user, code, and consumed=false. Not-found and
// already-consumed are indistinguishable by design.
func (r *MongoResetRepository) FindActive(ctx context.Context, userID int64, code string) (*domain.ResetRequest, error) {
	var mr mongoReset
	filter := bson.M{"user_id": userID, "code": code, "consumed": false}
	if err := r.coll.FindOne(ctx, filter).Decode(&mr); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrInvalidResetCode
		}
		return nil, fmt.Errorf("find reset request: %w", err)
	}
	return &domain.ResetRequest{
		ID:        mr.ID.Hex(),
		UserID:    mr.UserID,
		Code:      mr.Code,
		ExpiresAt: mr.ExpiresAt,
		Consumed:  mr.Consumed,
		CreatedAt: mr.CreatedAt,
	}, nil
}

func (r *MongoResetRepository) MarkConsumed(ctx context.Context, resetID string) error {
	oid, err := primitive.ObjectIDFromHex(resetID)
	if err != nil {
		return fmt.Errorf("mark reset consumed: %w", err)
	}
	_, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"consumed": true}},
	)
	if err != nil {
		return fmt.Errorf("mark reset consumed: %w", err)
	}
	return nil
}

func (r *MongoResetRepository) InvalidateForUser(ctx context.Context, userID int64) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "consumed": false},
		bson.M{"$set": bson.M{"consumed": true}},
	)
	if err != nil {
		return fmt.Errorf("invalidate reset requests: %w", err)
	}
	return nil
}

var _ ports.ResetRepository = (*MongoResetRepository)(nil)
