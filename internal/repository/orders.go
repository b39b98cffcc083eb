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

type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

func (m *MongoOrderRepository) Insert(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	if _, err := m.col.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (m *MongoOrderRepository) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var o model.Order
	err := m.col.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

// FindByOwner returns the user's orders, newest first.
func (m *MongoOrderRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return m.findAll(ctx, bson.M{"owner_id": ownerID}, opts)
}

// FindBySession returns a guest session's orders, newest first.
func (m *MongoOrderRepository) FindBySession(ctx context.Context, sessionID string) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return m.findAll(ctx, bson.M{"guest_session_id": sessionID}, opts)
}

func (m *MongoOrderRepository) FindAll(ctx context.Context) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return m.findAll(ctx, bson.M{}, opts)
}

// FindUnownedBySession lists the orders a reconciliation run may claim:
// tagged with the session, not yet owned by anyone.
func (m *MongoOrderRepository) FindUnownedBySession(ctx context.Context, sessionID string) ([]*model.Order, error) {
	filter := bson.M{
		"guest_session_id": sessionID,
		"owner_id":         bson.M{"$in": []interface{}{nil, ""}},
	}
	return m.findAll(ctx, filter, options.Find())
}

func (m *MongoOrderRepository) findAll(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Order, error) {
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var o model.Order
		if err := cur.Decode(&o); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, cur.Err()
}

func (m *MongoOrderRepository) UpdateStatus(ctx context.Context, orderID string, status model.Status) error {
	return m.setField(ctx, orderID, "status", status)
}

func (m *MongoOrderRepository) SetPaymentStatus(ctx context.Context, orderID string, status model.PaymentStatus) error {
	return m.setField(ctx, orderID, "payment_status", status)
}

func (m *MongoOrderRepository) setField(ctx context.Context, orderID, field string, value interface{}) error {
	filter := bson.M{"order_id": orderID}
	update := bson.M{
		"$set": bson.M{
			field:        value,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ClaimGuestOrder reassigns one guest order to userID. The filter insists the
// order is still unowned, so duplicate reconciliation runs cannot migrate the
// same order twice: the loser sees ErrAlreadyOwned.
func (m *MongoOrderRepository) ClaimGuestOrder(ctx context.Context, orderID, userID string) error {
	filter := bson.M{
		"order_id": orderID,
		"owner_id": bson.M{"$in": []interface{}{nil, ""}},
	}
	update := bson.M{
		"$set": bson.M{
			"owner_id":   userID,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to claim order: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrAlreadyOwned
	}
	return nil
}

// DeleteExpiredGuestOrders removes unowned guest orders created before the
// cutoff whose status is terminal. Orders a guest might still reconcile
// (PENDING, PROCESSING, SHIPPED) are never touched.
func (m *MongoOrderRepository) DeleteExpiredGuestOrders(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{
		"owner_id":         bson.M{"$in": []interface{}{nil, ""}},
		"guest_session_id": bson.M{"$nin": []interface{}{nil, ""}},
		"status":           bson.M{"$in": []model.Status{model.StatusDelivered, model.StatusCancelled}},
		"created_at":       bson.M{"$lt": cutoff},
	}

	result, err := m.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired guest orders: %w", err)
	}
	return result.DeletedCount, nil
}
