package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Chen-Zehua-TP/sgvmart/internal/auth"
	"github.com/Chen-Zehua-TP/sgvmart/internal/repository"
)

// ReconciliationService migrates guest-session orders into an authenticated
// user's history, exactly once per order, and runs the retention sweep over
// guest orders nobody ever claimed.
type ReconciliationService struct {
	orders OrderRepository
}

func NewReconciliationService(orders OrderRepository) *ReconciliationService {
	return &ReconciliationService{orders: orders}
}

// MigrateGuestOrders reassigns every order tagged with sessionID and still
// unowned to userID, and returns how many were migrated. Idempotent: a second
// call finds nothing left to claim and returns 0. A per-order failure (a
// concurrent reconciliation won the claim, a transient write error) is
// skipped so the rest of the batch still migrates.
func (s *ReconciliationService) MigrateGuestOrders(ctx context.Context, userID, sessionID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if !auth.ValidSessionToken(sessionID) {
		return 0, fmt.Errorf("%w: malformed session token", ErrValidation)
	}

	orders, err := s.orders.FindUnownedBySession(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	migrated := 0
	for _, o := range orders {
		err := s.orders.ClaimGuestOrder(ctx, o.ID, userID)
		if errors.Is(err, repository.ErrAlreadyOwned) {
			// Lost the race to a concurrent reconciliation.
			continue
		}
		if err != nil {
			log.Printf("guest order %s not migrated: %v", o.ID, err)
			continue
		}
		migrated++
	}

	return migrated, nil
}

// SweepExpiredGuestOrders deletes unowned guest orders older than the
// retention window whose status is terminal. Non-terminal orders survive any
// age: a guest might still come back for them.
func (s *ReconciliationService) SweepExpiredGuestOrders(ctx context.Context, window time.Duration) (int64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("%w: retention window must be positive", ErrValidation)
	}
	cutoff := time.Now().UTC().Add(-window)
	return s.orders.DeleteExpiredGuestOrders(ctx, cutoff)
}

// RunRetentionSweep runs the sweep on a ticker until ctx is cancelled.
func (s *ReconciliationService) RunRetentionSweep(ctx context.Context, interval, window time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.SweepExpiredGuestOrders(ctx, window)
			if err != nil {
				log.Printf("retention sweep failed: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("retention sweep deleted %d guest orders", deleted)
			}
		}
	}
}
