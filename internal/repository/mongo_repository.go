package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MN15LONER/grocer/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrCartNotFound = errors.New("cart not found")

type mongoCartRepository struct {
	collection *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoCartRepository) Load(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	return &cart, nil
}

// Save upserts the whole serialized cart under the user's key. The in-memory
// cart is authoritative, so the document is replaced rather than patched.
func (m *mongoCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	filter := bson.M{"user_id": cart.UserID}
	update := bson.M{"$set": bson.M{
		"user_id":    cart.UserID,
		"items":      cart.Items,
		"created_at": cart.CreatedAt,
		"updated_at": cart.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

func (m *mongoCartRepository) Delete(ctx context.Context, userID string) error {
	filter := bson.M{"user_id": userID}

	// DeletedCount of zero is fine: clearing an absent cart is a no-op.
	_, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return nil
}

func (m *mongoCartRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
