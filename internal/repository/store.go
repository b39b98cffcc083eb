package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrAddressNotFound = errors.New("address not found")

	// ErrStockConflict means the conditional stock decrement matched no
	// document: the product is gone, inactive, or short on stock. The caller
	// re-reads the product to tell these apart.
	ErrStockConflict = errors.New("stock conflict")

	// ErrAlreadyOwned means a guest order could not be claimed because some
	// other reconciliation got there first.
	ErrAlreadyOwned = errors.New("order already owned")
)

// Store wraps the mongo client so services can run multi-document
// transactions without knowing about sessions.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: client, db: db}
}

// WithTransaction runs fn inside one mongo transaction. Every repository call
// made with the context passed to fn joins the transaction; if fn returns an
// error the whole transaction is aborted.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// EnsureIndexes creates the indexes the repositories rely on: one cart per
// owner, unique ids, and the lookups used by reconciliation and the
// retention sweep.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"carts": {
			{
				Keys:    bson.D{{Key: "owner_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"orders": {
			{
				Keys:    bson.D{{Key: "order_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			},
			{
				Keys: bson.D{{Key: "guest_session_id", Value: 1}},
			},
		},
		"products": {
			{
				Keys:    bson.D{{Key: "product_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"addresses": {
			{
				Keys: bson.D{{Key: "address_id", Value: 1}, {Key: "owner_id", Value: 1}},
			},
		},
	}

	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}
