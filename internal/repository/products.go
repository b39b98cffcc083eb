package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Chen-Zehua-TP/sgvmart/internal/model"
)

// Catalog provider backed by the products collection. Catalog CRUD lives in
// the admin surface; the order core only reads products and moves stock.
type MongoProductRepository struct {
	col *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{col: db.Collection("products")}
}

func (m *MongoProductRepository) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var p model.Product
	err := m.col.FindOne(ctx, bson.M{"product_id": productID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// DecrementStock takes qty units off the product, but only if the product is
// active and actually has them. Check and decrement are one conditional
// update, so two concurrent checkouts can never both pass the check and
// drive stock below zero. Matching no document returns ErrStockConflict; the
// caller re-reads the product for the precise reason.
func (m *MongoProductRepository) DecrementStock(ctx context.Context, productID string, qty int) error {
	filter := bson.M{
		"product_id": productID,
		"is_active":  true,
		"stock":      bson.M{"$gte": qty},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -qty},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrStockConflict
	}
	return nil
}
