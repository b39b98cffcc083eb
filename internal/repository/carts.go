package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Chen-Zehua-TP/sgvmart/internal/model"
)

// Mongo implementation. One document per owner, items embedded.
type MongoCartRepository struct {
	col *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{col: db.Collection("carts")}
}

func (m *MongoCartRepository) FindByOwner(ctx context.Context, ownerID string) (*model.Cart, error) {
	var cart model.Cart
	err := m.col.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &cart, nil
}

// AddLine appends an item to the owner's cart, creating the cart on first
// use. The unique owner_id index keeps concurrent first adds from producing
// two carts.
func (m *MongoCartRepository) AddLine(ctx context.Context, ownerID string, item model.CartItem) error {
	now := time.Now().UTC()
	item.AddedAt = now

	filter := bson.M{"owner_id": ownerID}
	update := bson.M{
		"$push":        bson.M{"items": item},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"owner_id": ownerID, "created_at": now},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := m.col.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to add cart line: %w", err)
	}
	return nil
}

func (m *MongoCartRepository) SetLineQuantity(ctx context.Context, ownerID, itemID string, quantity int) error {
	filter := bson.M{
		"owner_id":      ownerID,
		"items.item_id": itemID,
	}
	update := bson.M{
		"$set": bson.M{
			"items.$[elem].quantity": quantity,
			"updated_at":             time.Now().UTC(),
		},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.item_id": itemID},
		},
	})

	result, err := m.col.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to update line quantity: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (m *MongoCartRepository) RemoveLine(ctx context.Context, ownerID, itemID string) error {
	filter := bson.M{
		"owner_id":      ownerID,
		"items.item_id": itemID,
	}
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"item_id": itemID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove line: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

// RemoveCatalogLines drops every catalog line after a successful checkout.
// External lines stay behind, they are checked out separately.
func (m *MongoCartRepository) RemoveCatalogLines(ctx context.Context, ownerID string) error {
	filter := bson.M{"owner_id": ownerID}
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"kind": model.LineCatalog}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	if _, err := m.col.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to clear catalog lines: %w", err)
	}
	return nil
}

// Clear empties the owner's cart. Clearing a cart that does not exist is a
// no-op.
func (m *MongoCartRepository) Clear(ctx context.Context, ownerID string) error {
	filter := bson.M{"owner_id": ownerID}
	update := bson.M{
		"$set": bson.M{
			"items":      []model.CartItem{},
			"updated_at": time.Now().UTC(),
		},
	}

	if _, err := m.col.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
