// One-shot retention sweep over guest orders, meant for cron. Deletes
// unowned guest orders past the retention window whose status is terminal.
// Exits 0 on success, non-zero on any failure.
package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Chen-Zehua-TP/sgvmart/internal/config"
	"github.com/Chen-Zehua-TP/sgvmart/internal/repository"
	"github.com/Chen-Zehua-TP/sgvmart/internal/service"
)

func main() {
	cfg := config.Load()
	window := time.Duration(cfg.GuestOrderRetentionDays) * 24 * time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connection failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	orders := repository.NewMongoOrderRepository(client.Database(cfg.MongoDBName))
	recon := service.NewReconciliationService(orders)

	log.Printf("starting guest order cleanup (keeping last %d days)", cfg.GuestOrderRetentionDays)

	deleted, err := recon.SweepExpiredGuestOrders(ctx, window)
	if err != nil {
		log.Fatalf("cleanup failed: %v", err)
	}

	log.Printf("cleanup completed: deleted %d guest orders, cutoff %s",
		deleted, time.Now().UTC().Add(-window).Format(time.RFC3339))
}
