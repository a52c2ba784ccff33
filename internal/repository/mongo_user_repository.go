package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MN15LONER/grocer/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrUserNotFound = errors.New("user not found")

type mongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{
		collection: db.Collection("users"),
	}
}

func (m *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User

	filter := bson.M{"email": email}
	err := m.collection.FindOne(ctx, filter).Decode(&user)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (m *mongoUserRepository) Create(ctx context.Context, user *domain.User) (string, error) {
	user.ID = primitive.NewObjectID().Hex()
	user.CreatedAt = time.Now()

	_, err := m.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("email already registered: %w", err)
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return user.ID, nil
}

func (m *mongoUserRepository) RecordLogout(ctx context.Context, userID string) error {
	filter := bson.M{"_id": userID}
	update := bson.M{"$set": bson.M{"last_logout_at": time.Now()}}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to record logout: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (m *mongoUserRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
