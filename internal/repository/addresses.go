package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Chen-Zehua-TP/sgvmart/internal/model"
)

type MongoAddressRepository struct {
	col *mongo.Collection
}

func NewMongoAddressRepository(db *mongo.Database) *MongoAddressRepository {
	return &MongoAddressRepository{col: db.Collection("addresses")}
}

// FindOwned returns the address only if it belongs to ownerID. Somebody
// else's address id behaves exactly like a missing one.
func (m *MongoAddressRepository) FindOwned(ctx context.Context, addressID, ownerID string) (*model.Address, error) {
	filter := bson.M{
		"address_id": addressID,
		"owner_id":   ownerID,
	}

	var a model.Address
	err := m.col.FindOne(ctx, filter).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	return &a, nil
}
